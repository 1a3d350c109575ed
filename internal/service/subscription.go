package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/feniks1632/foodgram-project-react/internal/models"
)

// SubscriptionService handles the follower -> author relation and the
// subscriptions listing with its author projections.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// SubscribedAuthor is one followed author with a capped slice of their
// recipes and the uncapped recipe count.
type SubscribedAuthor struct {
	User         models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscribe adds a subscription of follower to author. Subscribing twice is
// a validation error. Self-subscription is not blocked, matching the
// original product behavior.
func (s *SubscriptionService) Subscribe(followerID, authorID uint) (*SubscribedAuthor, error) {
	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sub := models.Subscription{FollowerID: followerID, AuthorID: authorID}
	if err := s.db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("already subscribed to this author")
		}
		return nil, err
	}

	projections, err := s.projectAuthors(followerID, []models.User{author}, 0)
	if err != nil {
		return nil, err
	}
	return &projections[0], nil
}

// Unsubscribe removes the subscription. Unlike the favorite and cart
// relations, removing an absent subscription is a not-found error.
func (s *SubscriptionService) Unsubscribe(followerID, authorID uint) error {
	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of the user's subscribed authors, each with up to
// recipesLimit of their recipes (0 means no cap), plus the total author count.
func (s *SubscriptionService) List(followerID uint, offset, limit, recipesLimit int) ([]SubscribedAuthor, int64, error) {
	base := s.db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.follower_id = ?", followerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	q := base.Order("subscriptions.id")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	projections, err := s.projectAuthors(followerID, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return projections, total, nil
}

// IsSubscribed reports whether follower follows each of the given authors,
// resolved with one query for the whole set.
func (s *SubscriptionService) IsSubscribed(followerID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(authorIDs))
	if followerID == 0 || len(authorIDs) == 0 {
		return result, nil
	}

	var followed []uint
	err := s.db.Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id IN ?", followerID, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}

func (s *SubscriptionService) projectAuthors(followerID uint, authors []models.User, recipesLimit int) ([]SubscribedAuthor, error) {
	if len(authors) == 0 {
		return []SubscribedAuthor{}, nil
	}

	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	var recipes []models.Recipe
	err := s.db.Where("author_id IN ?", ids).
		Order("pub_date DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[uint][]models.Recipe, len(authors))
	counts := make(map[uint]int64, len(authors))
	for _, r := range recipes {
		counts[r.AuthorID]++
		if recipesLimit > 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}

	projections := make([]SubscribedAuthor, len(authors))
	for i, a := range authors {
		authorRecipes := byAuthor[a.ID]
		if authorRecipes == nil {
			authorRecipes = []models.Recipe{}
		}
		projections[i] = SubscribedAuthor{
			User:         a,
			Recipes:      authorRecipes,
			RecipesCount: counts[a.ID],
		}
	}
	return projections, nil
}
