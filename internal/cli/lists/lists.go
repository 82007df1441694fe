package lists

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

type BucketCmd struct {
	Add    BucketAddCmd    `cmd:"" help:"Add a bucket list item."`
	List   BucketListCmd   `cmd:"" help:"List the bucket list."`
	Done   BucketDoneCmd   `cmd:"" help:"Mark an item achieved."`
	Delete BucketDeleteCmd `cmd:"" help:"Delete an item."`
}

type WishCmd struct {
	Add    WishAddCmd    `cmd:"" help:"Add a wishlist item."`
	List   WishListCmd   `cmd:"" help:"List the wishlist."`
	Status WishStatusCmd `cmd:"" help:"Set an item's status."`
	Delete WishDeleteCmd `cmd:"" help:"Delete an item."`
}

func findBucket(app *cli.Context, ref string) (models.BucketListItem, error) {
	b, err := cli.Resolve(app.Coordinator.Bucket().Read().Items, ref,
		func(b models.BucketListItem) string { return b.ID },
		func(b models.BucketListItem) string { return b.Title },
	)
	if err != nil {
		return b, fmt.Errorf("bucket list item: %w", err)
	}
	return b, nil
}

func findWish(app *cli.Context, ref string) (models.WishlistItem, error) {
	w, err := cli.Resolve(app.Coordinator.Wishlist().Read().Items, ref,
		func(w models.WishlistItem) string { return w.ID },
		func(w models.WishlistItem) string { return w.Name },
	)
	if err != nil {
		return w, fmt.Errorf("wishlist item: %w", err)
	}
	return w, nil
}

type BucketAddCmd struct {
	Title    string `arg:"" help:"What you want to do."`
	Category string `help:"Category: travel, achievement, experience, skill, creative or adventure."`
	Priority string `help:"Priority: someday, this_year, soon or bucket."`
}

func (c *BucketAddCmd) Run(ctx context.Context, app *cli.Context) error {
	return app.Coordinator.CreateBucketItem(ctx, models.CreateBucketItemInput{
		Title:    c.Title,
		Category: models.BucketCategory(c.Category),
		Priority: models.BucketPriority(c.Priority),
	})
}

type BucketListCmd struct{}

func (c *BucketListCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	items := app.Coordinator.Bucket().Read().Items
	if len(items) == 0 {
		app.Println("Bucket list is empty.")
		return nil
	}

	summary := app.Coordinator.Summary()
	app.Println(cli.TitleStyle.Render(fmt.Sprintf("Bucket list · %d/%d achieved", summary.BucketAchieved, summary.BucketTotal)))
	for _, b := range items {
		mark := "[ ]"
		extra := ""
		if b.IsCompleted {
			mark = cli.DoneStyle.Render("[x]")
			if b.CompletedAt != nil {
				extra = " " + utils.FormatDay(*b.CompletedAt)
			}
		}
		app.Printf("%s %s%s  %s\n", mark, b.Title, cli.MutedStyle.Render(extra), cli.MutedStyle.Render(cli.ShortID(b.ID)))
	}
	return nil
}

type BucketDoneCmd struct {
	Item  string `arg:"" help:"Title or id."`
	Notes string `help:"How it went."`
	Undo  bool   `help:"Mark the item not achieved."`
}

func (c *BucketDoneCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	b, err := findBucket(app, c.Item)
	if err != nil {
		return err
	}
	var notes *string
	if c.Notes != "" {
		notes = &c.Notes
	}
	return app.Coordinator.CompleteBucketItem(ctx, b.ID, !c.Undo, notes)
}

type BucketDeleteCmd struct {
	Item string `arg:"" help:"Title or id."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BucketDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	b, err := findBucket(app, c.Item)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q?", b.Title), c.Yes)
	if err != nil || !ok {
		return err
	}
	return app.Coordinator.DeleteBucketItem(ctx, b.ID)
}

type WishAddCmd struct {
	Name     string   `arg:"" help:"Item name."`
	Price    *float64 `help:"Price."`
	URL      string   `name:"url" help:"Product link."`
	Category string   `help:"Category: tech, home, hobby, clothing, travel or general."`
	Priority int      `help:"Priority from 0 to 5."`
}

func (c *WishAddCmd) Run(ctx context.Context, app *cli.Context) error {
	in := models.CreateWishlistInput{
		Name:     c.Name,
		Price:    c.Price,
		Category: models.WishlistCategory(c.Category),
		Priority: c.Priority,
	}
	if c.URL != "" {
		in.URL = &c.URL
	}
	return app.Coordinator.CreateWishlistItem(ctx, in)
}

type WishListCmd struct {
	Status string `help:"Only items with this status."`
}

func (c *WishListCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	shown := 0
	total := 0.0
	for _, w := range app.Coordinator.Wishlist().Read().Items {
		if c.Status != "" && string(w.Status) != c.Status {
			continue
		}
		shown++

		price := "-"
		if w.Price != nil {
			price = fmt.Sprintf("%.2f", *w.Price)
			if w.Status != models.WishlistStatusPurchased && w.Status != models.WishlistStatusDropped {
				total += *w.Price
			}
		}
		app.Printf("%-30s %10s  %s  %s\n", w.Name, price, cli.WarnStyle.Render(string(w.Status)), cli.MutedStyle.Render(cli.ShortID(w.ID)))
	}

	if shown == 0 {
		app.Println("Wishlist is empty.")
		return nil
	}
	app.Printf("\nStill to buy: %.2f\n", total)
	return nil
}

type WishStatusCmd struct {
	Item   string `arg:"" help:"Name or id."`
	Status string `arg:"" enum:"researching,decided,purchased,dropped" help:"New status: researching, decided, purchased or dropped."`
}

func (c *WishStatusCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	w, err := findWish(app, c.Item)
	if err != nil {
		return err
	}
	return app.Coordinator.SetWishlistStatus(ctx, w.ID, models.WishlistStatus(c.Status))
}

type WishDeleteCmd struct {
	Item string `arg:"" help:"Name or id."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *WishDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	w, err := findWish(app, c.Item)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q?", w.Name), c.Yes)
	if err != nil || !ok {
		return err
	}
	return app.Coordinator.DeleteWishlistItem(ctx, w.ID)
}
