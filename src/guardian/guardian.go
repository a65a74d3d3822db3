/*
Package guardian answers visibility questions about topics and viewers.

The rule language here is deliberately small: staff see everything,
soft-deleted topics are staff-only, and private messages are staff-only at
this layer (participant ACLs are resolved upstream, before a viewer ever
reaches the topic view).
*/
package guardian

import (
	"github.com/nterray/discourse/src/models"
)

type Guardian struct{}

func (Guardian) IsAnonymous(viewer *models.User) bool {
	return viewer == nil
}

func (Guardian) IsStaff(viewer *models.User) bool {
	return viewer != nil && viewer.IsStaff()
}

func (g Guardian) CanViewTopic(topic *models.Topic, viewer *models.User) bool {
	if topic == nil {
		return false
	}
	if g.IsStaff(viewer) {
		return true
	}
	if topic.Deleted {
		return false
	}
	if topic.IsPrivateMessage() {
		return false
	}
	return true
}
