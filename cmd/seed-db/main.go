// Command seed-db loads the poster catalog from a CSV export, seeds the
// standing bundle offers, coupons, and store settings, and provisions an
// admin API key. It is idempotent: re-running updates records in place and
// never resets coupon usage counters.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/coupon"
	"github.com/posterzone/storefront/internal/domain/identity"
	"github.com/posterzone/storefront/internal/domain/promo"
	"github.com/posterzone/storefront/internal/domain/settings"
	"github.com/posterzone/storefront/internal/importer"
	"github.com/posterzone/storefront/internal/repository"
)

func main() {
	var (
		databaseURL  string
		postersFile  string
		adminKey     string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&postersFile, "posters-file", "db/seed/posters.csv", "path to poster catalog CSV")
	flag.StringVar(&adminKey, "admin-key", "", "admin API key to seed (or PZ_SEED_ADMIN_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or PZ_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminKey == "" {
		adminKey = os.Getenv("PZ_SEED_ADMIN_KEY")
	}
	if adminKey == "" {
		slog.Error("admin API key is required: set --admin-key or PZ_SEED_ADMIN_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("PZ_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, postersFile, adminKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, postersFile, adminKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedPosters(ctx, repository.NewPosterRepository(pool), postersFile); err != nil {
		return errors.Wrap(err, "seed posters")
	}
	if err := seedBundles(ctx, repository.NewBundleRepository(pool)); err != nil {
		return errors.Wrap(err, "seed bundles")
	}
	if err := seedCoupons(ctx, repository.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedSettings(ctx, repository.NewSettingsRepository(pool)); err != nil {
		return errors.Wrap(err, "seed settings")
	}
	if err := seedAdminKey(ctx, repository.NewAPIKeyRepository(pool), adminKey, pepper); err != nil {
		return errors.Wrap(err, "seed admin key")
	}

	return nil
}

// categoryID derives a stable category identifier from its display name.
func categoryID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func seedPosters(ctx context.Context, repo *repository.PosterRepository, path string) error {
	slog.Info("reading poster catalog", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open posters file")
	}
	defer f.Close()

	res, err := importer.Parse(f)
	if err != nil {
		return errors.Wrap(err, "parse posters CSV")
	}
	for _, re := range res.Errors {
		slog.Warn("skipping bad row", slog.Int("row", re.Row), slog.String("reason", re.Reason))
	}

	slog.Info("upserting posters", slog.Int("count", len(res.Posters)))

	seen := make(map[string]bool)
	for _, p := range res.Posters {
		id := categoryID(p.Category)
		if id != "" && !seen[id] {
			if err := repo.UpsertCategory(ctx, id, p.Category); err != nil {
				return err
			}
			seen[id] = true
		}

		p.Category = id
		if err := repo.Upsert(ctx, p); err != nil {
			return err
		}

		slog.Info("upserted poster", slog.String("id", p.ID), slog.String("title", p.Title))
	}

	return nil
}

func seedBundles(ctx context.Context, repo *repository.BundleRepository) error {
	slog.Info("seeding bundle offers")

	offers := []promo.Offer{
		{
			ID:          "buy-3-get-1",
			Title:       "Buy 3, Get 1 Free",
			Description: "Add four posters and the cheapest one is free",
			Trigger:     promo.TriggerQuantity,
			MinQuantity: 3,
		},
		{
			ID:          "big-order-5",
			Title:       "Big Order Bonus",
			Description: "5% off orders over 3000",
			Trigger:     promo.TriggerAmount,
			MinOrder:    decimal.NewFromInt(3000),
			PercentOff:  decimal.NewFromInt(5),
		},
	}

	for _, o := range offers {
		if err := repo.Upsert(ctx, o); err != nil {
			return err
		}
		slog.Info("upserted bundle", slog.String("id", o.ID), slog.String("title", o.Title))
	}

	return nil
}

func seedCoupons(ctx context.Context, repo *repository.CouponRepository) error {
	slog.Info("seeding coupons")

	coupons := []coupon.Coupon{
		{
			ID:           "save10",
			Code:         "SAVE10",
			DiscountType: coupon.DiscountPercentage,
			Value:        decimal.NewFromInt(10),
			Description:  "10% off your order",
		},
		{
			ID:           "welcome200",
			Code:         "WELCOME200",
			DiscountType: coupon.DiscountFixed,
			Value:        decimal.NewFromInt(200),
			MinOrder:     decimal.NewFromInt(1000),
			Description:  "200 off your first big order",
		},
		{
			ID:           "flash50",
			Code:         "FLASH50",
			DiscountType: coupon.DiscountFixed,
			Value:        decimal.NewFromInt(50),
			MaxUses:      100,
			Description:  "Flash sale: 50 off, first 100 orders",
		},
	}

	for _, c := range coupons {
		if err := repo.Upsert(ctx, c); err != nil {
			return err
		}
		slog.Info("upserted coupon", slog.String("code", c.Code), slog.String("description", c.Description))
	}

	return nil
}

func seedSettings(ctx context.Context, repo *repository.SettingsRepository) error {
	slog.Info("seeding store settings")

	defaults := map[string]string{
		settings.KeyFreeShippingThreshold: "1500",
		settings.KeyFlatShippingFee:       "50",
		settings.KeyTaxRate:               "0.18",
	}
	for key, value := range defaults {
		if err := repo.Set(ctx, key, value); err != nil {
			return err
		}
		slog.Info("set setting", slog.String("key", key), slog.String("value", value))
	}

	return nil
}

func seedAdminKey(ctx context.Context, repo *repository.APIKeyRepository, adminKey, pepper string) error {
	slog.Info("seeding admin API key")

	info := identity.APIKeyInfo{
		ID:      "admin",
		KeyHash: identity.HashKey([]byte(pepper), adminKey),
		Name:    "Store admin",
		Scopes:  []string{identity.ScopeAdmin},
	}
	if err := repo.Upsert(ctx, info); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))

	return nil
}
