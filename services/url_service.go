package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/akinalp/kisalt/apiclient"
	"github.com/akinalp/kisalt/models"
)

// Sayfalama varsayılanları — dashboard listesi ve istatistik kartları aynı sayfayı kullanır.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	maxPageSize     = 100
)

// URLService, kısa link CRUD işlemleri.
type URLService interface {
	List(ctx context.Context, page, pageSize int) (*models.Page[models.ShortURL], error)
	Get(ctx context.Context, id string) (*models.ShortURL, error)
	Detail(ctx context.Context, shortCode string) (*models.ShortURL, error)
	Create(ctx context.Context, req *models.CreateURLRequest) (*models.ShortURL, error)
	Update(ctx context.Context, id string, req *models.UpdateURLRequest) (*models.ShortURL, error)
	Delete(ctx context.Context, id string) error
	// Stats, ilk sayfadan dashboard özet kartlarını hesaplar.
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// ResolutionCache, URL değişince eski redirect çözümlemelerini düşürür.
// RedirectService bu interface'i karşılar.
type ResolutionCache interface {
	Forget(shortCode string)
	Purge()
}

type urlService struct {
	client *apiclient.Client
	cache  ResolutionCache
	now    func() time.Time
}

// NewURLService, constructor. cache nil olabilir (CLI tek komut çalıştırır).
func NewURLService(client *apiclient.Client, cache ResolutionCache) URLService {
	return &urlService{client: client, cache: cache, now: time.Now}
}

// List, GET /Url?page=&pageSize=. Geçersiz değerler varsayılana çekilir.
func (s *urlService) List(ctx context.Context, page, pageSize int) (*models.Page[models.ShortURL], error) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	result, err := apiclient.Get[models.Page[models.ShortURL]](ctx, s.client, "/Url", query)
	if err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []models.ShortURL{}
	}
	return &result, nil
}

func (s *urlService) Get(ctx context.Context, id string) (*models.ShortURL, error) {
	if err := models.RequireField("id", id, "validation.idRequired"); err != nil {
		return nil, err
	}

	result, err := apiclient.Get[models.ShortURL](ctx, s.client, "/Url/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Detail, kısa koda göre URL kaydı (analitik sayfasının başlığı).
func (s *urlService) Detail(ctx context.Context, shortCode string) (*models.ShortURL, error) {
	if err := models.RequireField("shortCode", shortCode, "validation.shortCodeRequired"); err != nil {
		return nil, err
	}

	result, err := apiclient.Get[models.ShortURL](ctx, s.client, "/Url/detail/"+url.PathEscape(shortCode), nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Create, POST /Url/shorten. Son kullanma tarihi verilmezse null gönderilir.
func (s *urlService) Create(ctx context.Context, req *models.CreateURLRequest) (*models.ShortURL, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := apiclient.Post[models.ShortURL](ctx, s.client, "/Url/shorten", req)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Update, PUT /Url/{id}. ID path'ten alınır ve gövdeye de yazılır.
func (s *urlService) Update(ctx context.Context, id string, req *models.UpdateURLRequest) (*models.ShortURL, error) {
	req.ID = id
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := apiclient.Put[models.ShortURL](ctx, s.client, "/Url/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if result.ShortCode != "" {
			s.cache.Forget(result.ShortCode)
		} else {
			s.cache.Purge()
		}
	}
	return &result, nil
}

// Delete, DELETE /Url/{id}. Silinen kaydın kısa kodu bilinmediği için
// redirect cache'i tamamen boşaltılır.
func (s *urlService) Delete(ctx context.Context, id string) error {
	if err := models.RequireField("id", id, "validation.idRequired"); err != nil {
		return err
	}

	if _, err := apiclient.Delete[json.RawMessage](ctx, s.client, "/Url/"+url.PathEscape(id)); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Purge()
	}
	return nil
}

func (s *urlService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	page, err := s.List(ctx, DefaultPage, DefaultPageSize)
	if err != nil {
		return nil, err
	}
	stats := models.ComputeStats(page, s.now())
	return &stats, nil
}
