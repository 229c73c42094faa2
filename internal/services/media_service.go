// internal/services/media_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/cache"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

const defaultMediaFolder = "products"

type uploadRule struct {
	formats []string
	maxSize int64
}

var uploadRules = map[models.MediaKind]uploadRule{
	models.MediaKindImage: {formats: []string{"jpg", "jpeg", "png", "webp", "gif"}, maxSize: 10 * 1024 * 1024},
	models.MediaKindVideo: {formats: []string{"mp4", "mov", "webm"}, maxSize: 50 * 1024 * 1024},
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
}

type MediaService struct {
	db    *gorm.DB
	host  MediaHost
	cache *cache.Cache
}

type CreateMediaRequest struct {
	ProductID uint    `json:"productId" validate:"required"`
	Type      string  `json:"type" validate:"required,media_kind"`
	Name      string  `json:"name" validate:"required"`
	PublicID  *string `json:"publicId"`
}

type UpdateMediaRequest struct {
	ProductID *uint   `json:"productId" validate:"omitempty,gt=0"`
	Type      *string `json:"type" validate:"omitempty,media_kind"`
	Name      *string `json:"name" validate:"omitempty,min=1"`
	PublicID  *string `json:"publicId"`
}

type SignMediaRequest struct {
	ProductID uint   `json:"productId"`
	Kind      string `json:"kind"`
	Folder    string `json:"folder"`
	Format    string `json:"format"`
}

type SignedUpload struct {
	Folder         string    `json:"folder"`
	ResourceType   string    `json:"resourceType"`
	AllowedFormats []string  `json:"allowedFormats"`
	MaxFileSize    int64     `json:"maxFileSize"`
	Key            string    `json:"publicId"`
	UploadURL      string    `json:"uploadUrl"`
	Method         string    `json:"method"`
	ContentType    string    `json:"contentType,omitempty"`
	SecureURL      string    `json:"secureUrl"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// ConfirmMediaItem mirrors the upload result posted back by the client.
type ConfirmMediaItem struct {
	ProductID    uint    `json:"productId"`
	SecureURL    string  `json:"secure_url"`
	ResourceType string  `json:"resource_type"`
	PublicID     *string `json:"public_id"`
}

type DeleteMediaRef struct {
	ID       *uint   `json:"id"`
	PublicID *string `json:"publicId"`
}

func NewMediaService(db *gorm.DB, host MediaHost, cache *cache.Cache) *MediaService {
	return &MediaService{db: db, host: host, cache: cache}
}

func (s *MediaService) List(ctx context.Context, productID *uint) ([]models.Media, error) {
	query := s.db.WithContext(ctx).Model(&models.Media{})
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	var media []models.Media
	if err := query.Order("created_at DESC").Order("id DESC").Find(&media).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

func (s *MediaService) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := s.db.WithContext(ctx).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyMediaNotFound)
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return &media, nil
}

func (s *MediaService) Create(ctx context.Context, req *CreateMediaRequest) (*models.Media, error) {
	db := s.db.WithContext(ctx)
	if err := ensureProduct(db, req.ProductID); err != nil {
		return nil, err
	}

	media := &models.Media{
		ProductID: req.ProductID,
		Type:      req.Type,
		Name:      req.Name,
		PublicID:  req.PublicID,
	}
	if err := db.Create(media).Error; err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}

	s.invalidateProducts(ctx, media.ProductID)
	return media, nil
}

func (s *MediaService) Update(ctx context.Context, id uint, req *UpdateMediaRequest) (*models.Media, error) {
	media, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	updates := map[string]interface{}{}
	if req.ProductID != nil {
		if err := ensureProduct(db, *req.ProductID); err != nil {
			return nil, err
		}
		updates["product_id"] = *req.ProductID
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PublicID != nil {
		updates["public_id"] = *req.PublicID
	}

	if len(updates) > 0 {
		if err := db.Model(media).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update media: %w", err)
		}
	}

	s.invalidateProducts(ctx, media.ProductID)
	if req.ProductID != nil {
		s.invalidateProducts(ctx, *req.ProductID)
	}
	return s.GetByID(ctx, id)
}

func (s *MediaService) Remove(ctx context.Context, id uint) error {
	media, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Media{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}

	s.invalidateProducts(ctx, media.ProductID)
	if media.PublicID != nil {
		s.destroy(ctx, []string{*media.PublicID})
	}
	return nil
}

// Sign prepares a direct upload of one asset for a product.
func (s *MediaService) Sign(ctx context.Context, req *SignMediaRequest) (*SignedUpload, error) {
	if req.ProductID == 0 {
		return nil, utils.NewValidationError(i18n.KeyMediaProductRequired, nil)
	}

	kind := models.MediaKind(strings.ToLower(req.Kind))
	if kind == "" {
		kind = models.MediaKindImage
	}
	rule, ok := uploadRules[kind]
	if !ok {
		return nil, utils.NewValidationError(i18n.KeyMediaKindInvalid, nil)
	}

	format := strings.TrimPrefix(strings.ToLower(req.Format), ".")
	if format != "" && !containsString(rule.formats, format) {
		return nil, utils.NewValidationError("", []utils.ValidationError{{
			Field:   "format",
			Tag:     "oneof",
			Message: "format must be one of " + strings.Join(rule.formats, ", "),
		}})
	}

	folderRoot := strings.Trim(req.Folder, "/")
	if folderRoot == "" {
		folderRoot = defaultMediaFolder
	}
	folder := fmt.Sprintf("%s/%d", folderRoot, req.ProductID)

	key := folder + "/" + uuid.NewString()
	if format != "" {
		key += "." + format
	}
	contentType := contentTypes[format]

	if s.host == nil {
		return nil, utils.NewAppError(http.StatusServiceUnavailable, i18n.KeyMediaHostUnavailable)
	}
	url, expiresAt, err := s.host.SignUpload(ctx, key, contentType)
	if err != nil {
		if errors.Is(err, ErrStorageNotConfigured) {
			return nil, utils.NewAppError(http.StatusServiceUnavailable, i18n.KeyMediaHostUnavailable)
		}
		return nil, err
	}

	return &SignedUpload{
		Folder:         folder,
		ResourceType:   string(kind),
		AllowedFormats: rule.formats,
		MaxFileSize:    rule.maxSize,
		Key:            key,
		UploadURL:      url,
		Method:         http.MethodPut,
		ContentType:    contentType,
		SecureURL:      s.host.PublicURL(key),
		ExpiresAt:      expiresAt,
	}, nil
}

// Confirm records uploaded assets. All items are stored or none.
func (s *MediaService) Confirm(ctx context.Context, items []ConfirmMediaItem) ([]models.Media, error) {
	if len(items) == 0 {
		return nil, utils.NewValidationError(i18n.KeyMediaConfirmInvalid, nil)
	}

	created := make([]models.Media, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 || strings.TrimSpace(item.SecureURL) == "" {
			return nil, utils.NewValidationError(i18n.KeyMediaConfirmInvalid, nil)
		}

		kind := models.MediaKindImage
		if strings.EqualFold(item.ResourceType, string(models.MediaKindVideo)) {
			kind = models.MediaKindVideo
		}

		created = append(created, models.Media{
			ProductID: item.ProductID,
			Type:      string(kind),
			Name:      item.SecureURL,
			PublicID:  item.PublicID,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range created {
			if err := ensureProduct(tx, m.ProductID); err != nil {
				return err
			}
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	for _, m := range created {
		s.invalidateProducts(ctx, m.ProductID)
	}
	return created, nil
}

// DeleteMany removes media rows by id or public id and destroys the hosted objects.
// Host failures are logged and do not fail the request.
func (s *MediaService) DeleteMany(ctx context.Context, refs []DeleteMediaRef) (int64, error) {
	if len(refs) == 0 {
		return 0, utils.NewValidationError(i18n.KeyMediaDeleteInvalid, nil)
	}

	var ids []uint
	var publicIDs []string
	for _, ref := range refs {
		if ref.ID != nil && *ref.ID > 0 {
			ids = append(ids, *ref.ID)
		}
		if ref.PublicID != nil && *ref.PublicID != "" {
			publicIDs = append(publicIDs, *ref.PublicID)
		}
	}
	if len(ids) == 0 && len(publicIDs) == 0 {
		return 0, utils.NewValidationError(i18n.KeyMediaDeleteInvalid, nil)
	}

	var count int64
	var hosted []string
	var productIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Media{})
		switch {
		case len(ids) > 0 && len(publicIDs) > 0:
			query = query.Where("id IN ? OR public_id IN ?", ids, publicIDs)
		case len(ids) > 0:
			query = query.Where("id IN ?", ids)
		default:
			query = query.Where("public_id IN ?", publicIDs)
		}

		var rows []models.Media
		if err := query.Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to find media: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		rowIDs := make([]uint, 0, len(rows))
		for _, m := range rows {
			rowIDs = append(rowIDs, m.ID)
			productIDs = append(productIDs, m.ProductID)
			if m.PublicID != nil && *m.PublicID != "" {
				hosted = append(hosted, *m.PublicID)
			}
		}

		result := tx.Where("id IN ?", rowIDs).Delete(&models.Media{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete media: %w", result.Error)
		}
		count = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidateProducts(ctx, productIDs...)
	s.destroy(ctx, uniqueStrings(append(hosted, publicIDs...)))
	return count, nil
}

func (s *MediaService) invalidateProducts(ctx context.Context, productIDs ...uint) {
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, cache.ProductKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).Warn("Product cache invalidation failed")
	}
}

func (s *MediaService) destroy(ctx context.Context, keys []string) {
	if s.host == nil || len(keys) == 0 {
		return
	}
	if err := s.host.Destroy(ctx, keys); err != nil {
		logrus.WithError(err).WithField("keys", keys).Warn("Failed to destroy hosted media")
	}
}

func ensureProduct(db *gorm.DB, productID uint) error {
	var count int64
	if err := db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return utils.NewNotFoundError(i18n.KeyProductNotFound)
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
