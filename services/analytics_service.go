package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akinalp/kisalt/apiclient"
	"github.com/akinalp/kisalt/models"
)

// AnalyticsService, tıklama istatistikleri.
//
// Tarih aralıkları yapılandırılmış saat dilimine göre gün başı/gün sonu
// olarak hesaplanır ve UTC ISO-8601 (milisaniyeli) gönderilir.
type AnalyticsService interface {
	TopURLs(ctx context.Context, r models.DateRange) ([]models.TopURL, error)
	URLAnalytics(ctx context.Context, shortCode string, r models.DateRange) (*models.URLAnalytics, error)
	// Overview, URL detayı + URL analitiği + en çok tıklananları paralel çeker.
	// Herhangi biri başarısız olursa diğerleri iptal edilir ve ilk hata döner.
	Overview(ctx context.Context, shortCode string, r models.DateRange) (*models.AnalyticsOverview, error)
}

type analyticsService struct {
	client   *apiclient.Client
	urls     URLService
	location *time.Location
	topCount int
	now      func() time.Time
}

// NewAnalyticsService, constructor. location nil ise UTC, topCount <= 0 ise 10.
func NewAnalyticsService(client *apiclient.Client, urls URLService, location *time.Location, topCount int) AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	if topCount <= 0 {
		topCount = 10
	}
	return &analyticsService{
		client:   client,
		urls:     urls,
		location: location,
		topCount: topCount,
		now:      time.Now,
	}
}

func (s *analyticsService) TopURLs(ctx context.Context, r models.DateRange) ([]models.TopURL, error) {
	query := s.rangeQuery(r)
	query.Set("count", strconv.Itoa(s.topCount))

	result, err := apiclient.Get[[]models.TopURL](ctx, s.client, "/Analytic/top-urls", query)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []models.TopURL{}
	}
	return result, nil
}

func (s *analyticsService) URLAnalytics(ctx context.Context, shortCode string, r models.DateRange) (*models.URLAnalytics, error) {
	if err := models.RequireField("shortCode", shortCode, "validation.shortCodeRequired"); err != nil {
		return nil, err
	}

	query := s.rangeQuery(r)
	query.Set("shortCode", shortCode)

	result, err := apiclient.Get[models.URLAnalytics](ctx, s.client, "/Analytic/url-analytics", query)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *analyticsService) Overview(ctx context.Context, shortCode string, r models.DateRange) (*models.AnalyticsOverview, error) {
	if err := models.RequireField("shortCode", shortCode, "validation.shortCodeRequired"); err != nil {
		return nil, err
	}

	start, end := r.Bounds(s.now(), s.location)
	overview := &models.AnalyticsOverview{
		Range:     r,
		StartDate: models.FormatISO(start),
		EndDate:   models.FormatISO(end),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail, err := s.urls.Detail(gctx, shortCode)
		if err != nil {
			return err
		}
		overview.URL = detail
		return nil
	})

	g.Go(func() error {
		analytics, err := s.URLAnalytics(gctx, shortCode, r)
		if err != nil {
			return err
		}
		overview.Analytics = analytics
		return nil
	})

	g.Go(func() error {
		top, err := s.TopURLs(gctx, r)
		if err != nil {
			return err
		}
		overview.TopURLs = top
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

// rangeQuery, startDate/endDate parametrelerini üretir.
func (s *analyticsService) rangeQuery(r models.DateRange) url.Values {
	start, end := r.Bounds(s.now(), s.location)

	query := url.Values{}
	query.Set("startDate", models.FormatISO(start))
	query.Set("endDate", models.FormatISO(end))
	return query
}
