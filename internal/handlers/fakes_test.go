package handlers

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio-space-backend/internal/assistant"
	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/libraries"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
)

type likeKey struct{ user, board uuid.UUID }

// world is the shared in-memory state behind the fake repositories.
type world struct {
	users  map[uuid.UUID]*models.User
	boards map[uuid.UUID]*models.Board
	images map[uuid.UUID]*models.Image
	tags   map[uuid.UUID][]string
	likes  map[likeKey]time.Time
	links  map[string]*models.ShareLink

	exploreCalls int
}

func newWorld() *world {
	return &world{
		users:  map[uuid.UUID]*models.User{},
		boards: map[uuid.UUID]*models.Board{},
		images: map[uuid.UUID]*models.Image{},
		tags:   map[uuid.UUID][]string{},
		likes:  map[likeKey]time.Time{},
		links:  map[string]*models.ShareLink{},
	}
}

func strPtr(s string) *string { return &s }

// users

type fakeUsers struct{ w *world }

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range f.w.users {
		if u.Email == user.Email {
			return repo.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.w.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.w.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.w.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	u, ok := f.w.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = strings.ToLower(v.(string))
		case "birth_date":
			d := v.(time.Time)
			u.BirthDate = &d
		case "password_hash":
			u.PasswordHash = strPtr(v.(string))
		case "provider":
			u.Provider = v.(models.Provider)
		case "provider_id":
			u.ProviderID = strPtr(v.(string))
		case "avatar_url":
			u.AvatarURL = strPtr(v.(string))
		case "email_verified":
			u.EmailVerified = v.(bool)
		case "pref_email_notifications":
			u.Preferences.EmailNotifications = v.(bool)
		case "pref_newsletter":
			u.Preferences.Newsletter = v.(bool)
		case "pref_profile_public":
			u.Preferences.ProfilePublic = v.(bool)
		}
	}
	return f.GetByID(ctx, id)
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.w.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.w.users, id)
	for bid, b := range f.w.boards {
		if b.UserID == id {
			(&fakeBoards{f.w}).drop(bid)
		}
	}
	return nil
}

func (f *fakeUsers) Stats(_ context.Context, id uuid.UUID) (*models.UserStats, error) {
	var s models.UserStats
	for _, b := range f.w.boards {
		if b.UserID != id {
			continue
		}
		s.TotalBoards++
		if b.IsPublic {
			s.PublicBoards++
		}
		for _, img := range f.w.images {
			if img.BoardID == b.ID {
				s.TotalImages++
			}
		}
	}
	for k := range f.w.likes {
		if k.user == id {
			s.LikedBoards++
		}
	}
	return &s, nil
}

func (f *fakeUsers) NewsletterSubscribers(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.w.users {
		if u.Preferences.Newsletter {
			out = append(out, *u)
		}
	}
	return out, nil
}

// boards

type fakeBoards struct{ w *world }

func (f *fakeBoards) drop(id uuid.UUID) {
	delete(f.w.boards, id)
	delete(f.w.tags, id)
	for iid, img := range f.w.images {
		if img.BoardID == id {
			delete(f.w.images, iid)
		}
	}
	for k := range f.w.likes {
		if k.board == id {
			delete(f.w.likes, k)
		}
	}
	for t, l := range f.w.links {
		if l.BoardID == id {
			delete(f.w.links, t)
		}
	}
}

func (f *fakeBoards) Create(_ context.Context, board *models.Board, tags []string) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	if board.BackgroundColor == "" {
		board.BackgroundColor = models.DefaultBackgroundColor
	}
	now := time.Now()
	board.CreatedAt, board.UpdatedAt = now, now
	cp := *board
	f.w.boards[board.ID] = &cp
	f.w.tags[board.ID] = models.NormalizeTags(tags)
	return nil
}

func (f *fakeBoards) GetByID(_ context.Context, id uuid.UUID) (*models.Board, error) {
	b, ok := f.w.boards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoards) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Board, error) {
	b, ok := f.w.boards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "title":
			b.Title = v.(string)
		case "description":
			b.Description = strPtr(v.(string))
		case "background_color":
			b.BackgroundColor = v.(string)
		case "is_public":
			b.IsPublic = v.(bool)
		case "share_token":
			b.ShareToken = strPtr(v.(string))
		}
	}
	b.UpdatedAt = time.Now()
	return f.GetByID(ctx, id)
}

func (f *fakeBoards) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.w.boards[id]; !ok {
		return repo.ErrNotFound
	}
	f.drop(id)
	return nil
}

func (f *fakeBoards) summary(b *models.Board, viewer uuid.UUID) models.BoardSummary {
	s := models.BoardSummary{Board: *b, Tags: []string{}}
	if u, ok := f.w.users[b.UserID]; ok {
		s.AuthorName = u.Name
		s.AuthorAvatar = u.AvatarURL
	}
	for _, img := range f.w.images {
		if img.BoardID == b.ID {
			s.ImageCount++
		}
	}
	for k := range f.w.likes {
		if k.board == b.ID {
			s.LikeCount++
			if k.user == viewer {
				s.IsLiked = true
			}
		}
	}
	s.Tags = append(s.Tags, f.w.tags[b.ID]...)
	sort.Strings(s.Tags)
	return s
}

func (f *fakeBoards) Summary(_ context.Context, id, viewer uuid.UUID) (*models.BoardSummary, error) {
	b, ok := f.w.boards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	s := f.summary(b, viewer)
	return &s, nil
}

func (f *fakeBoards) ListByUser(_ context.Context, userID uuid.UUID, q repo.BoardQuery) ([]models.BoardSummary, int64, error) {
	out := []models.BoardSummary{}
	for _, b := range f.w.boards {
		if b.UserID == userID {
			out = append(out, f.summary(b, userID))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBoards) Explore(_ context.Context, q repo.BoardQuery) ([]models.BoardSummary, int64, error) {
	f.w.exploreCalls++
	out := []models.BoardSummary{}
	for _, b := range f.w.boards {
		if b.IsPublic {
			out = append(out, f.summary(b, q.Viewer))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBoards) LikedBy(_ context.Context, userID uuid.UUID) ([]models.BoardSummary, error) {
	out := []models.BoardSummary{}
	for k := range f.w.likes {
		b, ok := f.w.boards[k.board]
		if k.user == userID && ok && (b.IsPublic || b.UserID == userID) {
			out = append(out, f.summary(b, userID))
		}
	}
	return out, nil
}

func (f *fakeBoards) ToggleLike(_ context.Context, userID, boardID uuid.UUID) (bool, error) {
	k := likeKey{userID, boardID}
	if _, ok := f.w.likes[k]; ok {
		delete(f.w.likes, k)
		return false, nil
	}
	f.w.likes[k] = time.Now()
	return true, nil
}

func (f *fakeBoards) Duplicate(ctx context.Context, sourceID, ownerID uuid.UUID) (*models.Board, error) {
	src, ok := f.w.boards[sourceID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := &models.Board{
		Title:           src.Title + " (Copy)",
		Description:     src.Description,
		BackgroundColor: src.BackgroundColor,
		UserID:          ownerID,
	}
	if err := f.Create(ctx, cp, f.w.tags[sourceID]); err != nil {
		return nil, err
	}
	for _, img := range f.w.images {
		if img.BoardID == sourceID {
			dup := *img
			dup.ID = uuid.New()
			dup.BoardID = cp.ID
			f.w.images[dup.ID] = &dup
		}
	}
	return cp, nil
}

// images

type fakeImages struct{ w *world }

func (f *fakeImages) Create(_ context.Context, image *models.Image) error {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	image.CreatedAt = time.Now()
	cp := *image
	f.w.images[image.ID] = &cp
	return nil
}

func (f *fakeImages) owned(id, userID uuid.UUID) bool {
	img, ok := f.w.images[id]
	if !ok {
		return false
	}
	b, ok := f.w.boards[img.BoardID]
	return ok && b.UserID == userID
}

func (f *fakeImages) GetOwned(_ context.Context, id, userID uuid.UUID) (*models.Image, error) {
	if !f.owned(id, userID) {
		return nil, repo.ErrNotFound
	}
	cp := *f.w.images[id]
	return &cp, nil
}

func (f *fakeImages) ListByBoard(_ context.Context, boardID uuid.UUID) ([]models.Image, error) {
	out := []models.Image{}
	for _, img := range f.w.images {
		if img.BoardID == boardID {
			out = append(out, *img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeImages) Update(_ context.Context, id uuid.UUID, updates map[string]any) (*models.Image, error) {
	img, ok := f.w.images[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range updates {
		n := v.(int)
		switch k {
		case "position_x":
			img.PositionX = n
		case "position_y":
			img.PositionY = n
		case "width":
			img.Width = n
		case "height":
			img.Height = n
		case "rotation":
			img.Rotation = n
		case "z_index":
			img.ZIndex = n
		}
	}
	cp := *img
	return &cp, nil
}

func (f *fakeImages) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.w.images[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.w.images, id)
	return nil
}

func (f *fakeImages) Reorder(_ context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		if !f.owned(id, userID) {
			return &repo.ImageAccessError{ID: id}
		}
	}
	for i, id := range ids {
		f.w.images[id].ZIndex = i
	}
	return nil
}

func (f *fakeImages) keys(match func(*models.Image) bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, img := range f.w.images {
		if img.StorageKey != "" && match(img) && !seen[img.StorageKey] {
			seen[img.StorageKey] = true
			out = append(out, img.StorageKey)
		}
	}
	return out
}

func (f *fakeImages) KeysForBoard(_ context.Context, boardID uuid.UUID) ([]string, error) {
	return f.keys(func(img *models.Image) bool { return img.BoardID == boardID }), nil
}

func (f *fakeImages) KeysForUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	return f.keys(func(img *models.Image) bool {
		b, ok := f.w.boards[img.BoardID]
		return ok && b.UserID == userID
	}), nil
}

func (f *fakeImages) UnreferencedKeys(_ context.Context, keys []string) ([]string, error) {
	var out []string
	for _, k := range keys {
		used := false
		for _, img := range f.w.images {
			if img.StorageKey == k {
				used = true
				break
			}
		}
		if !used {
			out = append(out, k)
		}
	}
	return out, nil
}

// tags

type fakeTags struct{ w *world }

func (f *fakeTags) ListByBoard(_ context.Context, boardID uuid.UUID) ([]string, error) {
	out := append([]string{}, f.w.tags[boardID]...)
	sort.Strings(out)
	return out, nil
}

func (f *fakeTags) Add(ctx context.Context, boardID uuid.UUID, name string) ([]string, error) {
	f.w.tags[boardID] = models.NormalizeTags(append(f.w.tags[boardID], name))
	return f.ListByBoard(ctx, boardID)
}

func (f *fakeTags) Replace(ctx context.Context, boardID uuid.UUID, names []string) ([]string, error) {
	f.w.tags[boardID] = models.NormalizeTags(names)
	return f.ListByBoard(ctx, boardID)
}

func (f *fakeTags) Remove(ctx context.Context, boardID uuid.UUID, name string) ([]string, error) {
	name = models.NormalizeTag(name)
	var kept []string
	for _, t := range f.w.tags[boardID] {
		if t != name {
			kept = append(kept, t)
		}
	}
	f.w.tags[boardID] = kept
	return f.ListByBoard(ctx, boardID)
}

func (f *fakeTags) Popular(_ context.Context, limit int) ([]models.TagCount, error) {
	counts := map[string]int64{}
	for id, names := range f.w.tags {
		if b, ok := f.w.boards[id]; ok && b.IsPublic {
			for _, n := range names {
				counts[n]++
			}
		}
	}
	out := []models.TagCount{}
	for n, c := range counts {
		out = append(out, models.TagCount{Name: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// share links

type fakeLinks struct{ w *world }

func (f *fakeLinks) Create(_ context.Context, link *models.ShareLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()
	cp := *link
	f.w.links[link.Token] = &cp
	return nil
}

func (f *fakeLinks) GetByToken(_ context.Context, token string) (*models.ShareLink, error) {
	l, ok := f.w.links[token]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLinks) ListByBoard(_ context.Context, boardID uuid.UUID) ([]models.ShareLink, error) {
	out := []models.ShareLink{}
	for _, l := range f.w.links {
		if l.BoardID == boardID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinks) Delete(_ context.Context, token string) error {
	if _, ok := f.w.links[token]; !ok {
		return repo.ErrNotFound
	}
	delete(f.w.links, token)
	return nil
}

// collaborators

type publishedEvent struct {
	BoardID uuid.UUID
	Type    libraries.WebSocketMessageType
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEvents) Publish(boardID uuid.UUID, eventType libraries.WebSocketMessageType, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{boardID, eventType})
}

func (f *fakeEvents) types() []libraries.WebSocketMessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]libraries.WebSocketMessageType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeNotify struct {
	welcome      []string
	boardCreated []string
	privacy      []bool
}

func (f *fakeNotify) Welcome(user *models.User) { f.welcome = append(f.welcome, user.Email) }

func (f *fakeNotify) BoardCreated(_ *models.User, board *models.Board) {
	f.boardCreated = append(f.boardCreated, board.Title)
}

func (f *fakeNotify) PrivacyChanged(_ *models.User, isPublic bool) {
	f.privacy = append(f.privacy, isPublic)
}

type fakeGoogle struct {
	identity *auth.GoogleIdentity
	err      error
	states   map[string]bool
}

func (f *fakeGoogle) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return f.identity, f.err
}

func (f *fakeGoogle) AuthURL(context.Context) (string, string, error) {
	if f.states == nil {
		f.states = map[string]bool{}
	}
	state := uuid.NewString()
	f.states[state] = true
	return "https://accounts.google.com/o/oauth2/auth?state=" + state, state, nil
}

func (f *fakeGoogle) Exchange(_ context.Context, _ string, state string) (*auth.GoogleIdentity, error) {
	if !f.states[state] {
		return nil, auth.ErrInvalidState
	}
	delete(f.states, state)
	return f.identity, f.err
}

type memStore struct {
	objects map[string][]byte
	deleted []string
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.objects[key] = buf.Bytes()
	return s.URL(key), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) URL(key string) string { return "https://cdn.test/" + key }

type fakeAgent struct {
	enabled bool
	got     assistant.BoardContext
}

func (a *fakeAgent) Enabled() bool { return a.enabled }

func (a *fakeAgent) Suggest(_ context.Context, board assistant.BoardContext) (*assistant.Suggestion, error) {
	a.got = board
	return &assistant.Suggestion{Tags: []string{"#cozy"}, Description: "Warm and quiet."}, nil
}
