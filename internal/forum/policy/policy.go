// Package policy is the authorization decision point for every post
// mutation. The posting rules live in one explicit table instead of
// conditionals scattered across handlers, and deletion is decided purely by
// the moderator flag. Both checks are pure functions of the session and the
// target; callers consult them at the single call site per mutation before
// any write.
package policy

import "github.com/shelfside/bookforum/internal/forum/domain"

// postingMatrix maps role x target x body to permitted. Absent entries deny.
//
//	reader:     text on topics only
//	creator:    any body on topics, own communities, own profile
//	journalist: any body on topics and communities, never profiles
var postingMatrix = map[domain.Role]map[domain.TargetKind]map[domain.BodyKind]bool{
	domain.RoleReader: {
		domain.TargetTopic: {domain.BodyText: true},
	},
	domain.RoleCreator: {
		domain.TargetTopic:     {domain.BodyText: true, domain.BodyImage: true, domain.BodyVideo: true},
		domain.TargetCommunity: {domain.BodyText: true, domain.BodyImage: true, domain.BodyVideo: true},
		domain.TargetProfile:   {domain.BodyText: true, domain.BodyImage: true, domain.BodyVideo: true},
	},
	domain.RoleJournalist: {
		domain.TargetTopic:     {domain.BodyText: true, domain.BodyImage: true, domain.BodyVideo: true},
		domain.TargetCommunity: {domain.BodyText: true, domain.BodyImage: true, domain.BodyVideo: true},
	},
}

// CanPost reports whether the role may create a post of the given body kind
// against the given target kind. Target ownership is a separate requirement,
// see RequiresOwnership.
func CanPost(role domain.Role, target domain.TargetKind, body domain.BodyKind) bool {
	targets, ok := postingMatrix[role]
	if !ok {
		return false
	}
	bodies, ok := targets[target]
	if !ok {
		return false
	}
	return bodies[body]
}

// RequiresOwnership reports whether the role may use the target kind only
// when it owns the specific target: creators post to their own communities
// and their own profile, never someone else's. Journalists and readers have
// no ownership-scoped targets (their matrix rows already exclude profiles).
func RequiresOwnership(role domain.Role, target domain.TargetKind) bool {
	if role != domain.RoleCreator {
		return false
	}
	return target == domain.TargetCommunity || target == domain.TargetProfile
}

// CanDelete reports whether the acting account may delete the post. Only
// the moderator flag grants deletion; role and authorship are irrelevant,
// including the author's own posts.
func CanDelete(actor domain.Account, _ domain.Post) bool {
	return actor.Moderator
}
