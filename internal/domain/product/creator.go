package product

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// CreateResult is the outcome of a product creation attempt. OK reports
// whether the product row was persisted; it is computed at the point of
// the store call, never inferred from entity state afterwards. Errors
// carries structured per-field messages and may be non-empty even when OK
// is true (rejected image entries in best-effort mode).
type CreateResult struct {
	OK      bool
	Product *Product
	Errors  FieldErrors
}

// CreateServiceConfig holds behavioural switches for the create service.
type CreateServiceConfig struct {
	// AtomicImages persists the product and all its images in a single
	// transaction, rolling everything back when any image is rejected.
	// When false, images are saved best-effort after the product: each
	// insert is independent and a failure leaves the product and the
	// other images in place.
	AtomicImages bool
}

// CreateService validates product-creation payloads and persists products
// with their associated images.
type CreateService struct {
	repo         Repository
	lg           *zap.Logger
	atomicImages bool
}

// NewCreateService creates a CreateService backed by the given repository.
func NewCreateService(cfg CreateServiceConfig, repo Repository, lg *zap.Logger) *CreateService {
	return &CreateService{
		repo:         repo,
		lg:           lg.Named("product"),
		atomicImages: cfg.AtomicImages,
	}
}

// Create validates params, persists the product and then its images.
//
// Anticipated failures (missing keys, non-positive price, store constraint
// violations) are reported through the result's Errors mapping with
// OK=false. The returned error is reserved for unanticipated store
// failures, which the caller treats as fatal for the request.
func (s *CreateService) Create(ctx context.Context, params CreateParams) (CreateResult, error) {
	if err := s.validate(params); err != nil {
		return CreateResult{Errors: err}, nil
	}

	p := &Product{
		Name:          *params.Name,
		Price:         *params.Price,
		CategoryID:    *params.CategoryID,
		StockQuantity: int(*params.StockQuantity),
		InStock:       true,
	}

	if s.atomicImages {
		return s.createAtomic(ctx, p, params.Images)
	}
	return s.createBestEffort(ctx, p, params.Images)
}

// validate normalizes the two structural error shapes of params.Validate
// into a FieldErrors mapping, or nil when the payload is valid.
func (s *CreateService) validate(params CreateParams) FieldErrors {
	err := params.Validate()
	if err == nil {
		return nil
	}

	var missing *MissingKeysError
	if errors.As(err, &missing) {
		return FieldErrors{"base": {missing.Error()}}
	}

	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	return FieldErrors{"base": {err.Error()}}
}

// createBestEffort saves the product first, then each image independently.
// Image failures do not undo the product or sibling images; store-level
// image failures are logged, entries without data are reported in Errors.
func (s *CreateService) createBestEffort(ctx context.Context, p *Product, images []ImageParams) (CreateResult, error) {
	if err := s.repo.Create(ctx, p); err != nil {
		var fields FieldErrors
		if errors.As(err, &fields) {
			return CreateResult{Errors: fields}, nil
		}
		return CreateResult{}, errors.Wrap(err, "create product")
	}

	result := CreateResult{OK: true, Product: p, Errors: FieldErrors{}}
	for _, entry := range images {
		if entry.Data == "" && entry.URL == "" {
			result.Errors.Add("images", MsgNoImageData)
			continue
		}

		img := buildImage(p.ID, entry)
		if err := s.repo.CreateImage(ctx, &img); err != nil {
			s.lg.Warn("image not saved",
				zap.Int64("product_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		p.Images = append(p.Images, img)
	}

	return result, nil
}

// createAtomic validates every image entry up front and persists the
// product together with its images in one transaction.
func (s *CreateService) createAtomic(ctx context.Context, p *Product, images []ImageParams) (CreateResult, error) {
	imgs := make([]Image, 0, len(images))
	for _, entry := range images {
		if entry.Data == "" && entry.URL == "" {
			return CreateResult{Errors: FieldErrors{"images": {MsgNoImageData}}}, nil
		}
		imgs = append(imgs, buildImage(0, entry))
	}

	if err := s.repo.CreateWithImages(ctx, p, imgs); err != nil {
		var fields FieldErrors
		if errors.As(err, &fields) {
			return CreateResult{Errors: fields}, nil
		}
		return CreateResult{}, errors.Wrap(err, "create product with images")
	}

	p.Images = imgs
	return CreateResult{OK: true, Product: p, Errors: FieldErrors{}}, nil
}

// buildImage maps an image entry to an Image, preferring inline data over
// an external URL when both are given. URL-only images are stored as a
// reference to be imported later.
func buildImage(productID int64, entry ImageParams) Image {
	img := Image{ProductID: productID}
	if entry.Data != "" {
		img.Data = entry.Data
	} else {
		img.URL = entry.URL
	}
	return img
}
