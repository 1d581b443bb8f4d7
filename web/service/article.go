package service

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/beyondbeauty/press/database"
	"github.com/beyondbeauty/press/database/model"
	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/util/common"
)

// ListOptions selects which articles List returns.
type ListOptions struct {
	ActiveOnly bool
}

// ArticleService persists articles and enforces one article per slug. The
// unique index on slug guards concurrent creates; revisions of one article are
// serialized so none of them re-commits an image another has retired.
type ArticleService struct {
	DB     *gorm.DB
	assets *AssetService

	revising sync.Map // article id -> *sync.Mutex
}

func NewArticleService(assets *AssetService) *ArticleService {
	return &ArticleService{DB: database.GetDB(), assets: assets}
}

func (s *ArticleService) checkImage(p ArticlePayload) error {
	if p.Image == nil {
		return nil
	}
	if s.assets == nil || !s.assets.Exists(*p.Image) {
		return &common.InvalidAssetError{Reason: "image " + *p.Image + " does not exist"}
	}
	return nil
}

func (s *ArticleService) Create(p ArticlePayload) (*model.Article, error) {
	if err := s.checkImage(p); err != nil {
		return nil, err
	}
	article := &model.Article{
		Slug:     p.Slug,
		Title:    p.Title,
		Body:     p.Body,
		IsActive: p.IsActive,
		Image:    p.Image,
	}
	if err := s.DB.Create(article).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, &common.DuplicateSlugError{Slug: p.Slug}
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	return article, nil
}

// Update replaces every mutable field of article id with p.
func (s *ArticleService) Update(id int, p ArticlePayload) (*model.Article, error) {
	if err := s.checkImage(p); err != nil {
		return nil, err
	}
	result := s.DB.Model(&model.Article{}).
		Where("id = ?", id).
		Select("slug", "title", "body", "is_active", "image").
		Updates(&model.Article{
			Slug:     p.Slug,
			Title:    p.Title,
			Body:     p.Body,
			IsActive: p.IsActive,
			Image:    p.Image,
		})
	if result.Error != nil {
		if database.IsDuplicate(result.Error) {
			return nil, &common.DuplicateSlugError{Slug: p.Slug}
		}
		return nil, fmt.Errorf("update article %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &common.NotFoundError{Entity: "article", Key: id}
	}
	return s.FindById(id)
}

// ToggleActive flips the active flag in a single statement.
func (s *ArticleService) ToggleActive(id int) (*model.Article, error) {
	result := s.DB.Model(&model.Article{}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))
	if result.Error != nil {
		return nil, fmt.Errorf("toggle article %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &common.NotFoundError{Entity: "article", Key: id}
	}
	return s.FindById(id)
}

func (s *ArticleService) FindById(id int) (*model.Article, error) {
	article := &model.Article{}
	err := s.DB.First(article, id).Error
	if database.IsNotFound(err) {
		return nil, &common.NotFoundError{Entity: "article", Key: id}
	} else if err != nil {
		return nil, err
	}
	return article, nil
}

// GetBySlugActive returns the article only while it is active. Inactive and
// unknown slugs give the same NotFoundError.
func (s *ArticleService) GetBySlugActive(slug string) (*model.Article, error) {
	article := &model.Article{}
	err := s.DB.Where("slug = ? AND is_active = ?", slug, true).First(article).Error
	if database.IsNotFound(err) {
		return nil, &common.NotFoundError{Entity: "article", Key: slug}
	} else if err != nil {
		return nil, err
	}
	return article, nil
}

// List returns articles in insertion order.
func (s *ArticleService) List(opts ListOptions) ([]model.Article, error) {
	articles := make([]model.Article, 0)
	q := s.DB.Model(&model.Article{})
	if opts.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("id ASC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ImageRefs returns every image reference held by an article.
func (s *ArticleService) ImageRefs() ([]string, error) {
	var refs []string
	err := s.DB.Model(&model.Article{}).
		Where("image IS NOT NULL").
		Pluck("image", &refs).Error
	return refs, err
}

// Publish normalizes sub, attaches the optional image and creates the
// article. An image attached for a create that then fails is retired.
func (s *ArticleService) Publish(sub Submission, image *Upload) (*model.Article, error) {
	p, err := NormalizeSubmission(sub)
	if err != nil {
		return nil, err
	}

	if image != nil {
		ref, err := s.assets.Attach(image)
		if err != nil {
			return nil, err
		}
		p.Image = &ref
	}

	article, err := s.Create(p)
	if err != nil {
		if p.Image != nil {
			s.assets.Retire(*p.Image)
		}
		return nil, err
	}
	logger.Infof("article %q created (id %d)", article.Slug, article.Id)
	return article, nil
}

// Revise applies a full update to article id. Without a new image the current
// one is kept unless removeImage is set. The previous image is retired only
// after the record stops referencing it.
func (s *ArticleService) Revise(id int, sub Submission, image *Upload, removeImage bool) (*model.Article, error) {
	lock, _ := s.revising.LoadOrStore(id, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
	defer lock.(*sync.Mutex).Unlock()

	current, err := s.FindById(id)
	if err != nil {
		return nil, err
	}
	p, err := NormalizeSubmission(sub)
	if err != nil {
		return nil, err
	}

	var attached string
	switch {
	case image != nil:
		attached, err = s.assets.Attach(image)
		if err != nil {
			return nil, err
		}
		p.Image = &attached
	case removeImage:
		p.Image = nil
	default:
		p.Image = current.Image
	}

	article, err := s.Update(id, p)
	if err != nil {
		if attached != "" {
			s.assets.Retire(attached)
		}
		return nil, err
	}

	if current.Image != nil && (p.Image == nil || *p.Image != *current.Image) {
		s.assets.Retire(*current.Image)
	}
	logger.Infof("article %q updated (id %d)", article.Slug, article.Id)
	return article, nil
}
