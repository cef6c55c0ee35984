package storage

import (
	"fmt"
	"strings"

	"sherpa/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// CloudinaryImageService serves car images from Cloudinary, falling back to
// the static asset host when an asset URL cannot be built.
type CloudinaryImageService struct {
	cld      *cloudinary.Cloudinary
	fallback *StaticImageService
	logger   *zap.Logger
}

// NewCloudinaryImageService builds an ImageService backed by Cloudinary.
func NewCloudinaryImageService(cloudName, apiKey, apiSecret, staticBaseURL string, logger *zap.Logger) (*CloudinaryImageService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryImageService{
		cld:      cld,
		fallback: &StaticImageService{BaseURL: staticBaseURL},
		logger:   logger,
	}, nil
}

func (s *CloudinaryImageService) ImageURL(car models.CarListing) string {
	publicID := car.ImageID
	if publicID == "" {
		publicID = "cars/" + imageSlug(car)
	}
	img, err := s.cld.Image(publicID)
	if err != nil {
		s.logger.Warn("cloudinary asset build failed", zap.String("publicId", publicID), zap.Error(err))
		return s.fallback.ImageURL(car)
	}
	url, err := img.String()
	if err != nil {
		s.logger.Warn("cloudinary url build failed", zap.String("publicId", publicID), zap.Error(err))
		return s.fallback.ImageURL(car)
	}
	return url
}

// StaticImageService serves car images from a static asset host.
type StaticImageService struct {
	BaseURL string
}

func (s *StaticImageService) ImageURL(car models.CarListing) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + imageSlug(car) + ".png"
}

// imageSlug derives the conventional asset name for a listing.
func imageSlug(car models.CarListing) string {
	return strings.Join(strings.Fields(car.Label()), "_")
}
