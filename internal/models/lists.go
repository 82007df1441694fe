package models

import (
	"strings"
	"time"
)

type BucketCategory string

const (
	BucketCategoryTravel      BucketCategory = "travel"
	BucketCategoryAchievement BucketCategory = "achievement"
	BucketCategoryExperience  BucketCategory = "experience"
	BucketCategorySkill       BucketCategory = "skill"
	BucketCategoryCreative    BucketCategory = "creative"
	BucketCategoryAdventure   BucketCategory = "adventure"
)

type BucketPriority string

const (
	BucketPrioritySomeday  BucketPriority = "someday"
	BucketPriorityThisYear BucketPriority = "this_year"
	BucketPrioritySoon     BucketPriority = "soon"
	BucketPriorityBucket   BucketPriority = "bucket"
)

type BucketListItem struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Title           string         `json:"title"`
	Description     *string        `json:"description"`
	Category        BucketCategory `json:"category"`
	Priority        BucketPriority `json:"priority"`
	IsCompleted     bool           `json:"is_completed"`
	CompletedAt     *time.Time     `json:"completed_at"`
	CompletionNotes *string        `json:"completion_notes"`
	Icon            string         `json:"icon"`
	OrderIndex      int            `json:"order_index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type CreateBucketItemInput struct {
	Title       string         `json:"title" validate:"required,notblank,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    BucketCategory `json:"category,omitempty" validate:"omitempty,oneof=travel achievement experience skill creative adventure"`
	Priority    BucketPriority `json:"priority,omitempty" validate:"omitempty,oneof=someday this_year soon bucket"`
	Icon        string         `json:"icon,omitempty"`
}

type UpdateBucketItemInput struct {
	Title           *string         `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description     *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category        *BucketCategory `json:"category,omitempty" validate:"omitempty,oneof=travel achievement experience skill creative adventure"`
	Priority        *BucketPriority `json:"priority,omitempty" validate:"omitempty,oneof=someday this_year soon bucket"`
	Icon            *string         `json:"icon,omitempty"`
	IsCompleted     *bool           `json:"is_completed,omitempty"`
	CompletionNotes *string         `json:"completion_notes,omitempty" validate:"omitempty,max=2000"`
}

type WishlistCategory string

const (
	WishlistCategoryTech     WishlistCategory = "tech"
	WishlistCategoryHome     WishlistCategory = "home"
	WishlistCategoryHobby    WishlistCategory = "hobby"
	WishlistCategoryClothing WishlistCategory = "clothing"
	WishlistCategoryTravel   WishlistCategory = "travel"
	WishlistCategoryGeneral  WishlistCategory = "general"
)

type WishlistStatus string

const (
	WishlistStatusResearching WishlistStatus = "researching"
	WishlistStatusDecided     WishlistStatus = "decided"
	WishlistStatusPurchased   WishlistStatus = "purchased"
	WishlistStatusDropped     WishlistStatus = "dropped"
)

// WishlistItem is something to buy. PurchasedAt is non-nil exactly when
// Status is WishlistStatusPurchased.
type WishlistItem struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Category    WishlistCategory `json:"category"`
	Priority    int              `json:"priority"`
	Status      WishlistStatus   `json:"status"`
	Price       *float64         `json:"price"`
	URL         *string          `json:"url"`
	Notes       *string          `json:"notes"`
	PurchasedAt *time.Time       `json:"purchased_at"`
	OrderIndex  int              `json:"order_index"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type CreateWishlistInput struct {
	Name        string           `json:"name" validate:"required,notblank,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    WishlistCategory `json:"category,omitempty" validate:"omitempty,oneof=tech home hobby clothing travel general"`
	Priority    int              `json:"priority,omitempty" validate:"min=0,max=5"`
	Price       *float64         `json:"price,omitempty" validate:"omitempty,min=0"`
	URL         *string          `json:"url,omitempty" validate:"omitempty,url"`
	Notes       *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateWishlistInput struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *WishlistCategory `json:"category,omitempty" validate:"omitempty,oneof=tech home hobby clothing travel general"`
	Priority    *int              `json:"priority,omitempty" validate:"omitempty,min=0,max=5"`
	Price       *float64          `json:"price,omitempty" validate:"omitempty,min=0"`
	URL         *string           `json:"url,omitempty" validate:"omitempty,url"`
	Notes       *string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status      *WishlistStatus   `json:"status,omitempty" validate:"omitempty,oneof=researching decided purchased dropped"`
}

func NewBucketItem(id, userID string, in CreateBucketItemInput, now time.Time) BucketListItem {
	b := BucketListItem{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.Category == "" {
		b.Category = BucketCategoryExperience
	}
	if b.Priority == "" {
		b.Priority = BucketPrioritySomeday
	}
	if b.Icon == "" {
		b.Icon = "star"
	}
	return b
}

// ApplyBucketPatch returns b with p applied; toggling completion stamps or
// clears CompletedAt.
func ApplyBucketPatch(b BucketListItem, p UpdateBucketItemInput, now time.Time) BucketListItem {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		b.Description = p.Description
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Priority != nil {
		b.Priority = *p.Priority
	}
	if p.Icon != nil {
		b.Icon = *p.Icon
	}
	if p.CompletionNotes != nil {
		b.CompletionNotes = p.CompletionNotes
	}
	if p.IsCompleted != nil && *p.IsCompleted != b.IsCompleted {
		b.IsCompleted = *p.IsCompleted
		if b.IsCompleted {
			t := now
			b.CompletedAt = &t
		} else {
			b.CompletedAt = nil
		}
	}
	b.UpdatedAt = now
	return b
}

func NewWishlistItem(id, userID string, in CreateWishlistInput, now time.Time) WishlistItem {
	w := WishlistItem{
		ID:          id,
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      WishlistStatusResearching,
		Price:       in.Price,
		URL:         in.URL,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if w.Category == "" {
		w.Category = WishlistCategoryGeneral
	}
	return w
}

// ApplyWishlistPatch returns w with p applied, keeping PurchasedAt in step
// with Status.
func ApplyWishlistPatch(w WishlistItem, p UpdateWishlistInput, now time.Time) WishlistItem {
	if p.Name != nil {
		w.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		w.Description = p.Description
	}
	if p.Category != nil {
		w.Category = *p.Category
	}
	if p.Priority != nil {
		w.Priority = *p.Priority
	}
	if p.Price != nil {
		w.Price = p.Price
	}
	if p.URL != nil {
		w.URL = p.URL
	}
	if p.Notes != nil {
		w.Notes = p.Notes
	}
	if p.Status != nil {
		w.Status = *p.Status
	}
	if w.Status == WishlistStatusPurchased {
		if w.PurchasedAt == nil {
			t := now
			w.PurchasedAt = &t
		}
	} else {
		w.PurchasedAt = nil
	}
	w.UpdatedAt = now
	return w
}
