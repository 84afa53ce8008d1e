package domain

import "time"

// Follow links a follower to a followee. The pair is unique; the feed
// aggregator merges profile posts of the accounts a follower follows.
type Follow struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}
