package storage

import "sherpa/models"

// ImageService resolves the hosted image URL for a car listing.
type ImageService interface {
	ImageURL(car models.CarListing) string
}
