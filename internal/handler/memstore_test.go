package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/miniwiki/internal/model"
	"github.com/hitoshi/miniwiki/internal/repository"
)

// --- 統合テスト用のステートフルなインメモリストア ---

// memStore はusers、wiki_pages、commentsの3テーブルを模倣する。
// 制約はPostgres実装と同じ条件で検査する。
type memStore struct {
	mu       sync.Mutex
	users    []*model.User
	pages    map[string]*model.Page
	comments []*model.Comment
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{pages: make(map[string]*model.Page)}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) usernameOf(id int64) string {
	for _, u := range s.users {
		if u.ID == id {
			return u.Username
		}
	}
	return ""
}

func (s *memStore) commentCount(slug string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.PageSlug == slug {
			n++
		}
	}
	return n
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	copied := *user
	r.s.users = append(r.s.users, &copied)
	return nil
}

type memPageRepo struct{ s *memStore }

func (r memPageRepo) ListSlugs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slugs := make([]string, 0, len(r.s.pages))
	for slug := range r.s.pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (r memPageRepo) FindBySlug(_ context.Context, slug string) (*model.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pages[slug]
	if !ok {
		return nil, nil
	}
	copied := *p
	copied.AuthorUsername = r.s.usernameOf(p.AuthorID)
	return &copied, nil
}

func (r memPageRepo) Save(_ context.Context, page *model.Page) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	existing, ok := r.s.pages[page.Slug]
	if !ok {
		page.ID = r.s.id()
		page.CreatedAt = now
		page.UpdatedAt = now
		copied := *page
		r.s.pages[page.Slug] = &copied
		return nil
	}
	if existing.AuthorID != page.AuthorID {
		return repository.ErrNotPageAuthor
	}
	existing.Content = page.Content
	existing.UpdatedAt = now
	return nil
}

type memCommentRepo struct{ s *memStore }

func (r memCommentRepo) ListByPageSlug(_ context.Context, slug string) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Comment
	for _, c := range r.s.comments {
		if c.PageSlug == slug {
			copied := *c
			copied.AuthorUsername = r.s.usernameOf(c.AuthorID)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (r memCommentRepo) CreateWithinLimit(_ context.Context, comment *model.Comment, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pages[comment.PageSlug]; !ok {
		return repository.ErrPageNotFound
	}
	n := 0
	for _, c := range r.s.comments {
		if c.PageSlug == comment.PageSlug {
			n++
		}
	}
	if n >= limit {
		return repository.ErrCommentLimitReached
	}
	comment.ID = r.s.id()
	comment.CreatedAt = time.Now()
	copied := *comment
	r.s.comments = append(r.s.comments, &copied)
	return nil
}

var (
	_ repository.UserRepository    = memUserRepo{}
	_ repository.PageRepository    = memPageRepo{}
	_ repository.CommentRepository = memCommentRepo{}
)
