package service

import (
	"context"
	"testing"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/stretchr/testify/require"
)

const announcementsTopic = "announcements"

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	posts := &PostService{Store: st}
	communities := &CommunityService{Store: st}

	reader := seedAccount(t, st, "reader", domain.RoleReader, false)
	creator := seedAccount(t, st, "creator", domain.RoleCreator, false)
	journalist := seedAccount(t, st, "journalist", domain.RoleJournalist, false)

	community, err := communities.CreateCommunity(ctx, creator, CreateCommunityParams{
		Name:      "Dune readers",
		BookTitle: "Dune",
	})
	require.NoError(t, err)

	t.Run("reader posts text to a topic", func(t *testing.T) {
		post, err := posts.CreatePost(ctx, reader, CreatePostParams{
			TargetKind: domain.TargetTopic,
			TargetID:   announcementsTopic,
			BodyKind:   domain.BodyText,
			Body:       "hello",
		})
		require.NoError(t, err)
		require.Equal(t, reader.ID, post.AuthorID)
	})

	t.Run("reader may not post media", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, reader, CreatePostParams{
			TargetKind: domain.TargetTopic,
			TargetID:   announcementsTopic,
			BodyKind:   domain.BodyImage,
			Body:       "img://cover.png",
		})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("reader may not post to communities", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, reader, CreatePostParams{
			TargetKind: domain.TargetCommunity,
			TargetID:   community.ID,
			BodyKind:   domain.BodyText,
			Body:       "hello",
		})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("creator posts video to own community", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, creator, CreatePostParams{
			TargetKind: domain.TargetCommunity,
			TargetID:   community.ID,
			BodyKind:   domain.BodyVideo,
			Body:       "vid://reading.mp4",
		})
		require.NoError(t, err)
	})

	t.Run("creator denied on someone else's community", func(t *testing.T) {
		other := seedAccount(t, st, "othercreator", domain.RoleCreator, false)
		_, err := posts.CreatePost(ctx, other, CreatePostParams{
			TargetKind: domain.TargetCommunity,
			TargetID:   community.ID,
			BodyKind:   domain.BodyText,
			Body:       "hello",
		})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("creator posts only to own profile", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, creator, CreatePostParams{
			TargetKind: domain.TargetProfile,
			TargetID:   creator.ID,
			BodyKind:   domain.BodyText,
			Body:       "new book out",
		})
		require.NoError(t, err)

		_, err = posts.CreatePost(ctx, creator, CreatePostParams{
			TargetKind: domain.TargetProfile,
			TargetID:   reader.ID,
			BodyKind:   domain.BodyText,
			Body:       "hijack",
		})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("journalist posts to any community but no profiles", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, journalist, CreatePostParams{
			TargetKind: domain.TargetCommunity,
			TargetID:   community.ID,
			BodyKind:   domain.BodyImage,
			Body:       "img://scoop.png",
		})
		require.NoError(t, err)

		_, err = posts.CreatePost(ctx, journalist, CreatePostParams{
			TargetKind: domain.TargetProfile,
			TargetID:   journalist.ID,
			BodyKind:   domain.BodyText,
			Body:       "note",
		})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing target is not found", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, reader, CreatePostParams{
			TargetKind: domain.TargetTopic,
			TargetID:   "no-such-topic",
			BodyKind:   domain.BodyText,
			Body:       "hello",
		})
		require.ErrorIs(t, err, ErrTargetNotFound)
	})

	t.Run("invalid kinds rejected before policy", func(t *testing.T) {
		_, err := posts.CreatePost(ctx, reader, CreatePostParams{
			TargetKind: domain.TargetKind("blog"),
			TargetID:   announcementsTopic,
			BodyKind:   domain.BodyText,
			Body:       "hello",
		})
		require.ErrorIs(t, err, ErrInvalidPost)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	posts := &PostService{Store: st}

	author := seedAccount(t, st, "author", domain.RoleReader, false)
	moderator := seedAccount(t, st, "mod", domain.RoleReader, true)

	newPost := func(t *testing.T) domain.Post {
		t.Helper()
		post, err := posts.CreatePost(ctx, author, CreatePostParams{
			TargetKind: domain.TargetTopic,
			TargetID:   announcementsTopic,
			BodyKind:   domain.BodyText,
			Body:       "hello",
		})
		require.NoError(t, err)
		return post
	}

	t.Run("author cannot delete own post", func(t *testing.T) {
		post := newPost(t)
		err := posts.DeletePost(ctx, author, post.ID)
		require.ErrorIs(t, err, ErrForbidden)

		// Denial must not remove the post.
		_, err = st.Posts().GetPostByID(ctx, post.ID)
		require.NoError(t, err)
	})

	t.Run("moderator deletes any post", func(t *testing.T) {
		post := newPost(t)
		require.NoError(t, posts.DeletePost(ctx, moderator, post.ID))

		_, err := st.Posts().GetPostByID(ctx, post.ID)
		require.Error(t, err)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		err := posts.DeletePost(ctx, moderator, "no-such-post")
		require.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	posts := &PostService{Store: st}

	reader := seedAccount(t, st, "reader", domain.RoleReader, false)

	for _, body := range []string{"first", "second", "third"} {
		_, err := posts.CreatePost(ctx, reader, CreatePostParams{
			TargetKind: domain.TargetTopic,
			TargetID:   announcementsTopic,
			BodyKind:   domain.BodyText,
			Body:       body,
		})
		require.NoError(t, err)
	}

	listed, err := posts.ListPosts(ctx, domain.TargetTopic, announcementsTopic)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	// Newest first.
	require.Equal(t, "third", listed[0].Body)
	require.Equal(t, "first", listed[2].Body)
}
