package website

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/forumurl"
	"github.com/nterray/discourse/src/logging"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/topicview"
)

// The id of the signed-in user, as resolved by the fronting auth layer.
// Absent for anonymous requests.
const currentUserHeader = "X-Forum-User-Id"

// Default best-of knobs for the HTTP surface. Individual params can
// override them per request.
var defaultBestOfOptions = topicview.BestOfOptions{
	Max:                   25,
	MinReplies:            10,
	MinTrustLevel:         1,
	BypassTrustLevelScore: 20,
	MinScore:              0,
}

type currentUserContextKey struct{}

func (routes *websiteRoutes) currentUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(currentUserHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.Atoi(header)
		if err != nil {
			http.Error(w, "bad user id", http.StatusBadRequest)
			return
		}

		user, err := routes.fetchUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				// A stale session; carry on anonymously.
				next.ServeHTTP(w, r)
				return
			}
			logging.ExtractLogger(r.Context()).Error().Err(err).Msg("Failed to fetch current user")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (routes *websiteRoutes) lookupUser(ctx context.Context, userID int) (*models.User, error) {
	return db.QueryOne[models.User](ctx, routes.conn,
		`
		SELECT id, username, name, is_admin, is_moderator, trust_level, avatar_asset_id, date_joined
		FROM users
		WHERE id = $1
		`,
		userID,
	)
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(currentUserContextKey{}).(*models.User)
	return user
}

type topicResponse struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	PostsCount    int    `json:"posts_count"`
	CurrentPage   int    `json:"current_page"`
	NextPage      *int   `json:"next_page"`
	CanonicalPath string `json:"canonical_path"`
	Summary       string `json:"summary,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`

	Posts        []postResponse        `json:"posts"`
	Participants []participantResponse `json:"participants"`
	Suggested    []suggestedResponse   `json:"suggested_topics"`
}

type postResponse struct {
	ID         int       `json:"id"`
	PostNumber int       `json:"post_number"`
	Author     string    `json:"author,omitempty"`
	URL        string    `json:"url"`
	Cooked     string    `json:"cooked"`
	CreatedAt  time.Time `json:"created_at"`
	Deleted    bool      `json:"deleted,omitempty"`
	LikeCount  int       `json:"like_count"`
	LinkCount  int       `json:"link_count"`
	Read       bool      `json:"read"`
}

type participantResponse struct {
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	PostCount int    `json:"post_count"`
}

type suggestedResponse struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	URL        string `json:"url"`
	PostsCount int    `json:"posts_count"`
}

func (routes *websiteRoutes) topic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topicID, err := strconv.Atoi(chi.URLParam(r, "topicid"))
	if err != nil {
		http.Error(w, "no such topic", http.StatusNotFound)
		return
	}

	params, streamOpts, ok := parseTopicQuery(r)
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	view, err := topicview.New(
		ctx,
		routes.stores,
		topicID,
		currentUser(r),
		topicview.ResolveRequest(params),
		streamOpts,
		routes.viewCfg,
	)
	if err != nil {
		switch {
		case errors.Is(err, topicview.ErrTopicNotFound),
			errors.Is(err, topicview.ErrAnchorNotFound):
			http.Error(w, "no such topic", http.StatusNotFound)
		case errors.Is(err, topicview.ErrLoginRequired):
			http.Error(w, "login required", http.StatusUnauthorized)
		case errors.Is(err, topicview.ErrPermissionDenied):
			http.Error(w, "permission denied", http.StatusForbidden)
		default:
			logging.ExtractLogger(ctx).Error().Err(err).Msg("Failed to build topic view")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	response, err := buildTopicResponse(ctx, view)
	if err != nil {
		logging.ExtractLogger(ctx).Error().Err(err).Msg("Failed to assemble topic response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

/*
Query params select the window. post_number, post_ids, filter=best_of and
page compete; the request resolver encodes which one wins.
*/
func parseTopicQuery(r *http.Request) (topicview.RequestParams, topicview.StreamOptions, bool) {
	q := r.URL.Query()

	var params topicview.RequestParams
	var streamOpts topicview.StreamOptions

	var ok bool
	if params.Page, ok = intParam(q.Get("page")); !ok {
		return params, streamOpts, false
	}
	if params.NearPostNumber, ok = intParam(q.Get("post_number")); !ok {
		return params, streamOpts, false
	}

	if raw := q.Get("post_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return params, streamOpts, false
			}
			params.PostIDs = append(params.PostIDs, id)
		}
	}

	if q.Get("filter") == "best_of" {
		opts := defaultBestOfOptions
		if opts.Max, ok = intParamDefault(q.Get("best_of_max"), opts.Max); !ok {
			return params, streamOpts, false
		}
		if opts.MinReplies, ok = intParamDefault(q.Get("min_replies"), opts.MinReplies); !ok {
			return params, streamOpts, false
		}
		if opts.MinTrustLevel, ok = intParamDefault(q.Get("min_trust_level"), opts.MinTrustLevel); !ok {
			return params, streamOpts, false
		}
		if opts.MinScore, ok = floatParamDefault(q.Get("min_score"), opts.MinScore); !ok {
			return params, streamOpts, false
		}
		if opts.BypassTrustLevelScore, ok = floatParamDefault(q.Get("bypass_trust_level_score"), opts.BypassTrustLevelScore); !ok {
			return params, streamOpts, false
		}
		opts.OnlyModeratorLiked = q.Get("only_moderator_liked") == "true"
		params.BestOf = &opts
	}

	if raw := q.Get("username_filters"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if username := strings.TrimSpace(part); username != "" {
				streamOpts.UsernameFilter = append(streamOpts.UsernameFilter, username)
			}
		}
	}
	streamOpts.ExcludeModeratorActions = q.Get("exclude_moderator_actions") == "true"
	streamOpts.BestOfOnly = q.Get("best_of_only") == "true"

	return params, streamOpts, true
}

func intParam(raw string) (int, bool) {
	return intParamDefault(raw, 0)
}

func intParamDefault(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func floatParamDefault(raw string, fallback float64) (float64, bool) {
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func buildTopicResponse(ctx context.Context, view *topicview.TopicView) (*topicResponse, error) {
	readSet, err := view.ReadSet(ctx)
	if err != nil {
		return nil, err
	}
	likeCounts, err := view.LikeCounts(ctx)
	if err != nil {
		return nil, err
	}
	linkCounts := view.LinkCounts()

	posts := make([]postResponse, len(view.Posts))
	for i, post := range view.Posts {
		author := ""
		if post.Author != nil {
			author = post.Author.Username
		}
		posts[i] = postResponse{
			ID:         post.Post.ID,
			PostNumber: post.Post.PostNumber,
			Author:     author,
			URL:        forumurl.BuildTopicPost(view.Topic.Slug, view.Topic.ID, post.Post.PostNumber),
			Cooked:     post.Post.Cooked,
			CreatedAt:  post.Post.CreatedAt,
			Deleted:    post.Post.Deleted,
			LikeCount:  likeCounts[post.Post.ID],
			LinkCount:  linkCounts[post.Post.ID],
			Read:       readSet[post.Post.PostNumber],
		}
	}

	participants, err := view.Participants(ctx)
	if err != nil {
		return nil, err
	}
	participantResponses := make([]participantResponse, len(participants))
	for i, p := range participants {
		participantResponses[i] = participantResponse{
			Username:  p.User.Username,
			Name:      p.User.Name,
			PostCount: p.PostCount,
		}
	}

	suggested, err := view.SuggestedTopics(ctx)
	if err != nil {
		return nil, err
	}
	suggestedResponses := make([]suggestedResponse, len(suggested))
	for i, s := range suggested {
		suggestedResponses[i] = suggestedResponse{
			ID:         s.ID,
			Title:      s.Title,
			Slug:       s.Slug,
			URL:        forumurl.BuildTopic(s.Slug, s.ID, 1),
			PostsCount: s.PostsCount,
		}
	}

	summary, err := view.Summary(ctx)
	if err != nil {
		return nil, err
	}
	imageURL, err := view.ImageURL(ctx)
	if err != nil {
		return nil, err
	}

	return &topicResponse{
		ID:            view.Topic.ID,
		Title:         view.Topic.Title,
		Slug:          view.Topic.Slug,
		PostsCount:    view.Topic.PostsCount,
		CurrentPage:   view.CurrentPage(),
		NextPage:      view.NextPage(),
		CanonicalPath: view.CanonicalPath(),
		Summary:       summary,
		ImageURL:      imageURL,
		Posts:         posts,
		Participants:  participantResponses,
		Suggested:     suggestedResponses,
	}, nil
}
