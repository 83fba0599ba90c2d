package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/lastros/pos-backend/api/responses"
	"github.com/lastros/pos-backend/api/validators"
	productsvc "github.com/lastros/pos-backend/internal/products"
	"github.com/lastros/pos-backend/internal/uploads"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
)

const (
	imageFormField     = "image"
	multipartMemoryCap = 1 << 20
	multipartOverhead  = 64 << 10
)

// ImageStore persists uploaded product images.
type ImageStore interface {
	SaveImage(ctx context.Context, originalName string, r io.Reader) (*uploads.Stored, error)
	Remove(name string) error
	MaxBytes() int64
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuidParam(r, "id", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), tenantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productsvc.CreateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), tenantID, body.ToInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuidParam(r, "id", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productsvc.UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), tenantID, productID, body.ToInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuidParam(r, "id", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), tenantID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// UploadProductImage accepts a multipart "image" field, stores it and points
// the product at the public URL. The stored file is removed when the product
// update fails.
func UploadProductImage(svc productsvc.Service, store ImageStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload storage unavailable"))
			return
		}
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuidParam(r, "id", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, store.MaxBytes()+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file too large"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(imageFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded"))
			return
		}
		defer file.Close()

		stored, err := store.SaveImage(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetImage(r.Context(), tenantID, productID, stored.URL)
		if err != nil {
			if removeErr := store.Remove(stored.Name); removeErr != nil && logg != nil {
				logg.Error(r.Context(), "upload.cleanup_failed", removeErr)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
