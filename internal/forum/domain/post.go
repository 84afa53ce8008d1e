package domain

import "time"

// TargetKind is where a post lands.
type TargetKind string

const (
	TargetTopic     TargetKind = "topic"
	TargetCommunity TargetKind = "community"
	TargetProfile   TargetKind = "profile"
)

func (t TargetKind) Valid() bool {
	switch t {
	case TargetTopic, TargetCommunity, TargetProfile:
		return true
	}
	return false
}

// BodyKind is the content type of a post body.
type BodyKind string

const (
	BodyText  BodyKind = "text"
	BodyImage BodyKind = "image"
	BodyVideo BodyKind = "video"
)

func (b BodyKind) Valid() bool {
	switch b {
	case BodyText, BodyImage, BodyVideo:
		return true
	}
	return false
}

type Post struct {
	ID         string
	AuthorID   string
	TargetKind TargetKind
	TargetID   string // topic id, community id, or profile owner's account id
	BodyKind   BodyKind
	Title      string
	Body       string // text content, or a media reference for image/video
	CreatedAt  time.Time
}

// Community is a creator-owned book community.
type Community struct {
	ID          string
	Name        string
	Description string
	BookTitle   string
	OwnerID     string
	CreatedAt   time.Time
}

// Topic is a site-wide discussion board, seeded by migration.
type Topic struct {
	ID          string
	Name        string
	Description string
}
