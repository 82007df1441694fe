package coordinator

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/models"
)

type (
	bucketList   = []models.BucketListItem
	wishlistList = []models.WishlistItem
)

func byBucketID(id string) func(models.BucketListItem) bool {
	return func(b models.BucketListItem) bool { return b.ID == id }
}

func byWishlistID(id string) func(models.WishlistItem) bool {
	return func(w models.WishlistItem) bool { return w.ID == id }
}

func (c *Coordinator) CreateBucketItem(ctx context.Context, in models.CreateBucketItemInput) error {
	a := action{collection: CollectionBucket, name: "create", failure: "create bucket list item"}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Added %q to the bucket list", in.Title)

	placeholder := models.NewBucketItem(tempID(), c.userID, in, c.Now())
	return run(ctx, c, c.bucket, a, cache.Mutation[models.BucketListItem]{
		Optimistic: func(cur bucketList) bucketList { return append(cur, placeholder) },
		Commit: func(ctx context.Context) (cache.Reconcile[models.BucketListItem], error) {
			created, err := c.provider.CreateBucketItem(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed bucketList) bucketList {
				return upsertWhere(confirmed, byBucketID(created.ID), created)
			}, nil
		},
	})
}

func (c *Coordinator) UpdateBucketItem(ctx context.Context, id string, patch models.UpdateBucketItemInput) error {
	a := action{collection: CollectionBucket, name: "update", failure: "update bucket list item", success: "Updated bucket list item"}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}
	return c.patchBucketItem(ctx, a, id, patch)
}

// CompleteBucketItem marks an item achieved, or not, with optional notes.
func (c *Coordinator) CompleteBucketItem(ctx context.Context, id string, completed bool, notes *string) error {
	a := action{collection: CollectionBucket, name: "complete", failure: "update bucket list item", success: "Bucket list item reopened"}
	if completed {
		a.success = "Bucket list item achieved"
	}
	patch := models.UpdateBucketItemInput{IsCompleted: &completed, CompletionNotes: notes}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}
	return c.patchBucketItem(ctx, a, id, patch)
}

func (c *Coordinator) patchBucketItem(ctx context.Context, a action, id string, patch models.UpdateBucketItemInput) error {
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	now := c.Now()
	return run(ctx, c, c.bucket, a, cache.Mutation[models.BucketListItem]{
		Optimistic: func(cur bucketList) bucketList {
			return replaceWhere(cur, byBucketID(id), func(b models.BucketListItem) models.BucketListItem {
				return models.ApplyBucketPatch(b, patch, now)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.BucketListItem], error) {
			updated, err := c.provider.UpdateBucketItem(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return func(confirmed bucketList) bucketList {
				return replaceWhere(confirmed, byBucketID(id), func(models.BucketListItem) models.BucketListItem { return updated })
			}, nil
		},
	})
}

func (c *Coordinator) DeleteBucketItem(ctx context.Context, id string) error {
	a := action{collection: CollectionBucket, name: "delete", failure: "delete bucket list item", success: "Deleted bucket list item"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur bucketList) bucketList { return removeWhere(cur, byBucketID(id)) }
	return run(ctx, c, c.bucket, a, cache.Mutation[models.BucketListItem]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.BucketListItem], error) {
			if err := c.provider.DeleteBucketItem(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}

func (c *Coordinator) CreateWishlistItem(ctx context.Context, in models.CreateWishlistInput) error {
	a := action{collection: CollectionWishlist, name: "create", failure: "create wishlist item"}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Added %q to the wishlist", in.Name)

	placeholder := models.NewWishlistItem(tempID(), c.userID, in, c.Now())
	return run(ctx, c, c.wishlist, a, cache.Mutation[models.WishlistItem]{
		Optimistic: func(cur wishlistList) wishlistList { return append(cur, placeholder) },
		Commit: func(ctx context.Context) (cache.Reconcile[models.WishlistItem], error) {
			created, err := c.provider.CreateWishlistItem(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed wishlistList) wishlistList {
				return upsertWhere(confirmed, byWishlistID(created.ID), created)
			}, nil
		},
	})
}

func (c *Coordinator) UpdateWishlistItem(ctx context.Context, id string, patch models.UpdateWishlistInput) error {
	a := action{collection: CollectionWishlist, name: "update", failure: "update wishlist item", success: "Updated wishlist item"}
	if patch.Status != nil {
		a.name = "status"
		a.success = fmt.Sprintf("Wishlist item marked %s", *patch.Status)
	}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}

	now := c.Now()
	return run(ctx, c, c.wishlist, a, cache.Mutation[models.WishlistItem]{
		Optimistic: func(cur wishlistList) wishlistList {
			return replaceWhere(cur, byWishlistID(id), func(w models.WishlistItem) models.WishlistItem {
				return models.ApplyWishlistPatch(w, patch, now)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.WishlistItem], error) {
			updated, err := c.provider.UpdateWishlistItem(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return func(confirmed wishlistList) wishlistList {
				return replaceWhere(confirmed, byWishlistID(id), func(models.WishlistItem) models.WishlistItem { return updated })
			}, nil
		},
	})
}

// SetWishlistStatus moves an item through researching, decided, purchased
// or dropped. Purchasing stamps purchased_at.
func (c *Coordinator) SetWishlistStatus(ctx context.Context, id string, status models.WishlistStatus) error {
	return c.UpdateWishlistItem(ctx, id, models.UpdateWishlistInput{Status: &status})
}

func (c *Coordinator) DeleteWishlistItem(ctx context.Context, id string) error {
	a := action{collection: CollectionWishlist, name: "delete", failure: "delete wishlist item", success: "Deleted wishlist item"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur wishlistList) wishlistList { return removeWhere(cur, byWishlistID(id)) }
	return run(ctx, c, c.wishlist, a, cache.Mutation[models.WishlistItem]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.WishlistItem], error) {
			if err := c.provider.DeleteWishlistItem(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}
