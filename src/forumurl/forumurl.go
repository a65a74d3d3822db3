package forumurl

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/nterray/discourse/src/config"
)

type Q struct {
	Name  string
	Value string
}

func Url(path string, query []Q) string {
	result := config.Config.BaseUrl + "/" + trim(path)
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	return result
}

// The site-relative path of a topic, with the page suffix omitted for page 1
// so that the first page has a single canonical form.
func TopicPath(slug string, topicID int, page int) string {
	path := "/t/" + slug + "/" + strconv.Itoa(topicID)
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}
	return path
}

func BuildTopic(slug string, topicID int, page int) string {
	var query []Q
	if page > 1 {
		query = append(query, Q{"page", strconv.Itoa(page)})
	}
	return Url("t/"+slug+"/"+strconv.Itoa(topicID), query)
}

func BuildTopicPost(slug string, topicID int, postNumber int) string {
	return Url("t/"+slug+"/"+strconv.Itoa(topicID)+"/"+strconv.Itoa(postNumber), nil)
}

func BuildAvatar(assetID uuid.UUID) string {
	return Url("assets/avatars/"+assetID.String(), nil)
}

func trim(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}
