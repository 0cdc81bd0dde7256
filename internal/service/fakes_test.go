package service

import (
	"context"
	"sync"

	"affiliatelink-go/internal/model"
	"affiliatelink-go/internal/repository"
)

// memLinkRepo 内存短链仓储，可注入插入冲突与存储错误
type memLinkRepo struct {
	mu         sync.Mutex
	byCode     map[string]*model.AffiliateLink
	nextID     uint
	existsErr  error
	getErr     error
	conflicts  int // 前 N 次插入返回唯一约束冲突
	createErr  error
	getCalls   int
	existCalls int
}

var _ repository.LinkRepository = (*memLinkRepo)(nil)

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{byCode: make(map[string]*model.AffiliateLink)}
}

func (r *memLinkRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existCalls++
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *memLinkRepo) Create(_ context.Context, link *model.AffiliateLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.conflicts > 0 {
		r.conflicts--
		return repository.ErrDuplicateCode
	}
	if _, ok := r.byCode[link.UniqueCode]; ok {
		return repository.ErrDuplicateCode
	}
	r.nextID++
	link.ID = r.nextID
	stored := *link
	r.byCode[link.UniqueCode] = &stored
	return nil
}

func (r *memLinkRepo) GetByCode(_ context.Context, code string) (*model.AffiliateLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	link, ok := r.byCode[code]
	if !ok {
		return nil, nil
	}
	found := *link
	return &found, nil
}

func (r *memLinkRepo) GetByID(_ context.Context, id uint) (*model.AffiliateLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.byCode {
		if link.ID == id {
			found := *link
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memLinkRepo) ListAll(_ context.Context) ([]model.AffiliateLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	links := make([]model.AffiliateLink, 0, len(r.byCode))
	for _, link := range r.byCode {
		links = append(links, *link)
	}
	return links, nil
}

func (r *memLinkRepo) put(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.byCode[code] = &model.AffiliateLink{ID: r.nextID, UniqueCode: code, TargetURL: "https://example.com"}
}

// memLinkCache 内存短链缓存
type memLinkCache struct {
	mu    sync.Mutex
	links map[string]*model.AffiliateLink
	sets  int
}

func newMemLinkCache() *memLinkCache {
	return &memLinkCache{links: make(map[string]*model.AffiliateLink)}
}

func (c *memLinkCache) Get(_ context.Context, code string) (*model.AffiliateLink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.links[code], nil
}

func (c *memLinkCache) Set(_ context.Context, link *model.AffiliateLink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.links[link.UniqueCode] = link
	return nil
}

// sequenceGenerator 按顺序返回给定短码，用尽后重复最后一个，并记录调用次数
type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *sequenceGenerator) next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.calls
	if idx >= len(g.codes) {
		idx = len(g.codes) - 1
	}
	g.calls++
	return g.codes[idx], nil
}

func (g *sequenceGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
