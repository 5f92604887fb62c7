package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
	"github.com/andresuchdata/promolift/backend-go/internal/predictor"
	"github.com/andresuchdata/promolift/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/promolift/backend-go/internal/service"
	"github.com/andresuchdata/promolift/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context, cfg *config.Config) (*postgres.DB, error) {
	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return postgres.Wrap(db, cfg.Database.MaxConcurrency), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseStoreIDs accepts "1,2,3" and ignores blanks.
func parseStoreIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid store id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func optionalFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

func requestFromFlags(c *cli.Context) (domain.ForecastRequest, error) {
	stores, err := parseStoreIDs(c.String("stores"))
	if err != nil {
		return domain.ForecastRequest{}, err
	}

	req := domain.ForecastRequest{
		StoreIDs:        stores,
		ProductCode:     c.String("product"),
		Region:          c.String("region"),
		Category:        c.String("category"),
		DateStart:       c.String("from"),
		DateEnd:         c.String("to"),
		PromotionCode:   c.String("promo"),
		PromotionName:   c.String("promo-name"),
		DiscountPercent: optionalFloat(c, "discount"),
		TargetMargin:    optionalFloat(c, "margin"),
		TargetPrice:     optionalFloat(c, "price"),
		SpecialDayCount: c.Int("special-days"),
		PeriodStart:     c.String("period-from"),
		PeriodEnd:       c.String("period-to"),
	}
	if c.IsSet("product-id") {
		id := c.Int64("product-id")
		req.ProductID = &id
	}
	return req, nil
}

func runPredict(c *cli.Context) error {
	cfg := config.Load()

	req, err := requestFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDB(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	client := predictor.NewClient(cfg.Prediction, nil)
	fanout := forecast.NewFanout(client, cfg.Prediction.MaxConcurrency, nil)
	svc := service.NewForecastService(
		postgres.NewCatalogRepository(db),
		postgres.NewStockTrendRepository(db),
		fanout,
		cfg.Forecast,
		nil,
		nil,
	)

	result, err := svc.Forecast(c.Context, req)
	if err != nil {
		return err
	}
	if c.Bool("summary") {
		return printJSON(result.Period)
	}
	return printJSON(result)
}

func runTracking(c *cli.Context) error {
	cfg := config.Load()

	db, err := openDB(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewCampaignService(postgres.NewPromotionRepository(db), cfg.Campaign, nil, nil)

	stores, err := parseStoreIDs(c.String("stores"))
	if err != nil {
		return err
	}
	filter := domain.CampaignFilter{
		Region:      c.String("region"),
		Category:    c.String("category"),
		ProductCode: c.String("product"),
		StoreIDs:    stores,
	}

	if c.Bool("outcomes") {
		outcomes, err := svc.Outcomes(c.Context, filter)
		if err != nil {
			return err
		}
		return printJSON(outcomes)
	}

	records, err := svc.Tracking(c.Context, filter)
	if err != nil {
		return err
	}
	return printJSON(records)
}

func runDetail(c *cli.Context) error {
	cfg := config.Load()

	key := c.Args().First()
	if key == "" {
		return cli.Exit("campaign key is required", 2)
	}

	db, err := openDB(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewCampaignService(postgres.NewPromotionRepository(db), cfg.Campaign, nil, nil)
	detail, err := svc.Detail(c.Context, key)
	if err != nil {
		return err
	}
	return printJSON(detail)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger.Init("release", level)

	filterFlags := []cli.Flag{
		&cli.StringFlag{Name: "stores", Usage: "Comma-separated store codes"},
		&cli.StringFlag{Name: "region", Usage: "Store region filter"},
		&cli.StringFlag{Name: "category", Usage: "Product category filter"},
		&cli.StringFlag{Name: "product", Usage: "Product code"},
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Run promotion demand forecasts and campaign reports against the database",
		Commands: []*cli.Command{
			{
				Name:  "predict",
				Usage: "Forecast demand for a product across stores and print the result as JSON",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.Int64Flag{Name: "product-id", Usage: "Product code, skipping catalog lookup"},
					&cli.StringFlag{Name: "from", Usage: "First forecast date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "to", Usage: "Last forecast date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "promo", Usage: "Promotion code", Value: domain.NoPromotionCode},
					&cli.StringFlag{Name: "promo-name", Usage: "Promotion display name"},
					&cli.Float64Flag{Name: "discount", Usage: "Requested discount percent"},
					&cli.Float64Flag{Name: "margin", Usage: "Requested margin percent"},
					&cli.Float64Flag{Name: "price", Usage: "Requested selling price"},
					&cli.IntFlag{Name: "special-days", Usage: "Number of special days in the window"},
					&cli.StringFlag{Name: "period-from", Usage: "Promotion period start for KPIs"},
					&cli.StringFlag{Name: "period-to", Usage: "Promotion period end for KPIs"},
					&cli.BoolFlag{Name: "summary", Usage: "Print only the promotion period KPIs"},
				}, filterFlags...),
				Action: runPredict,
			},
			{
				Name:  "tracking",
				Usage: "Print the campaign tracking list",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.BoolFlag{Name: "outcomes", Usage: "Print success stories and lost opportunities instead"},
				}, filterFlags...),
				Action: runTracking,
			},
			{
				Name:      "detail",
				Usage:     "Print the scorecard or feasibility of one campaign",
				ArgsUsage: "<campaign-key>",
				Flags:     []cli.Flag{newDBURLFlag()},
				Action:    runDetail,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
