package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type ProductHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewProductHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// listProducts возвращает весь каталог.
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		products []domain.Product
		err      error
	)

	if query != "" {
		products, err = p.catalogUsecase.SearchProducts(r.Context(), query)
	} else {
		products, err = p.catalogUsecase.ListProducts(r.Context())
	}
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewArrProductResponse(products))
}

// getProduct возвращает один товар по идентификатору.
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := p.catalogUsecase.GetProduct(r.Context(), productID)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponse(product))
}

// addProduct создает новый товар в каталоге. Изображения
// передаются в той же multipart-форме и необязательны.
func (p *ProductHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 150 << 20
		maxMemory           = 32 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	meta, err := parseProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.catalogUsecase.AddProduct(r.Context(), usecase.NewAddProductReq(
		meta.Name, meta.Description, meta.PriceCents, meta.Stock, meta.Category, images,
	))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewProductResponse(product))
}

type productFormMeta struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int64
}

func parseProductForm(r *http.Request) (*productFormMeta, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	priceRaw := strings.TrimSpace(r.FormValue("price"))
	if name == "" || priceRaw == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrMissingFields)
	}

	priceCents, err := parsePriceToCents(priceRaw)
	if err != nil {
		return nil, err
	}

	var stock int64
	if stockRaw := strings.TrimSpace(r.FormValue("stock")); stockRaw != "" {
		stock, err = strconv.ParseInt(stockRaw, 10, 64)
		if err != nil || stock < 0 {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidStock)
		}
	}

	return &productFormMeta{
		Name:        name,
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		PriceCents:  priceCents,
		Stock:       stock,
	}, nil
}
