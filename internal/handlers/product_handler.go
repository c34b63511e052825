package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/services"
)

// maxUploadSize bounds the CSV accepted by the bulk import
const maxUploadSize = 10 << 20

// ProductHandler handles product administration requests
type ProductHandler struct {
	productService services.ProductService
	importService  services.ImportService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService, importService services.ImportService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		importService:  importService,
	}
}

// @Summary Create a product
// @Description Create a single product from the admin form
// @Tags productos
// @Accept json
// @Produce json
// @Param product body services.CreateProductRequest true "Product form"
// @Success 201 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// @Summary List products
// @Description Filtered, paginated catalog. In-stock products come first.
// @Tags productos
// @Produce json
// @Param q query string false "Text search over name and id; a trailing dot switches to prefix match"
// @Param categoria query string false "Exact category"
// @Param publicado query string false "Publicado or No Publicado"
// @Param pagina query int false "Page number" default(1)
// @Param por_pagina query int false "Page size" default(20)
// @Success 200 {object} services.ProductPage
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var filters services.ProductFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	page, err := h.productService.ListProducts(c.Request.Context(), &filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// @Summary Get a product
// @Tags productos
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary List categories
// @Description Sorted distinct categories of the catalog
// @Tags productos
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/categorias [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// @Summary Update the normal price
// @Tags productos
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param price body services.UpdatePriceRequest true "New price"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/{id}/precio [patch]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	var req services.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.UpdatePrice(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Update the inventory
// @Tags productos
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param inventory body services.UpdateInventoryRequest true "New inventory"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/{id}/inventario [patch]
func (h *ProductHandler) UpdateInventory(c *gin.Context) {
	var req services.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.UpdateInventory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Delete products
// @Description Deletes every listed product in one transaction
// @Tags productos
// @Accept json
// @Produce json
// @Param ids body services.BulkDeleteRequest true "Product IDs"
// @Success 200 {object} map[string]int
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/eliminar [post]
func (h *ProductHandler) DeleteProducts(c *gin.Context) {
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	n, err := h.productService.DeleteProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"eliminados": n})
}

// @Summary Publish or unpublish products
// @Description Sets the publish flag of every listed product in one transaction
// @Tags productos
// @Accept json
// @Produce json
// @Param edit body services.BulkPublishRequest true "Product IDs and flag"
// @Success 200 {object} map[string]int
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/editar [post]
func (h *ProductHandler) SetPublished(c *gin.Context) {
	var req services.BulkPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	n, err := h.productService.SetPublished(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"actualizados": n})
}

// @Summary Bulk import products
// @Description Imports a CSV upload. The whole batch is rejected when any row is invalid.
// @Tags productos
// @Accept multipart/form-data
// @Produce json
// @Param archivo formData file true "CSV file"
// @Success 200 {object} importer.Result
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ImportErrorResponse
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /productos/importar [post]
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid upload",
			Message: "Debe adjuntar un archivo en el campo 'archivo'",
		})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "Invalid upload",
			Message: fmt.Sprintf("El archivo supera el máximo de %d bytes", maxUploadSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	result, err := h.importService.ImportProducts(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		var rejected *importer.BatchRejectedError
		var writeErr *importer.WriteError
		switch {
		case errors.As(err, &rejected):
			c.JSON(http.StatusUnprocessableEntity, ImportErrorResponse{
				Message: rejected.Error(),
				Errors:  rejected.Errors,
			})
		case errors.As(err, &writeErr):
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Import interrupted",
				"message":    writeErr.Error(),
				"importados": writeErr.Written,
			})
		default:
			respondError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportFile describes an archived import upload
type ImportFile struct {
	Name         string    `json:"nombre"`
	OriginalName string    `json:"nombreOriginal,omitempty"`
	Size         int64     `json:"tamano"`
	UploadedAt   time.Time `json:"fecha"`
}

// @Summary List archived imports
// @Description Uploaded import files, newest first
// @Tags productos
// @Produce json
// @Success 200 {object} map[string][]ImportFile
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/importaciones [get]
func (h *ProductHandler) ListImports(c *gin.Context) {
	files, err := h.importService.ListImports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ImportFile, 0, len(files))
	for _, f := range files {
		out = append(out, ImportFile{
			Name:         path.Base(f.Key),
			OriginalName: f.Metadata["original_name"],
			Size:         f.Size,
			UploadedAt:   f.LastModified,
		})
	}
	c.JSON(http.StatusOK, gin.H{"archivos": out})
}

// @Summary Download an archived import
// @Tags productos
// @Produce text/csv
// @Param nombre path string true "Archived file name"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/importaciones/{nombre} [get]
func (h *ProductHandler) DownloadImport(c *gin.Context) {
	name := c.Param("nombre")
	data, err := h.importService.GetImport(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	sendCSV(c, name, data)
}

// @Summary Delete an archived import
// @Tags productos
// @Param nombre path string true "Archived file name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/importaciones/{nombre} [delete]
func (h *ProductHandler) DeleteImport(c *gin.Context) {
	if err := h.importService.DeleteImport(c.Request.Context(), c.Param("nombre")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Download the import template
// @Tags productos
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /productos/plantilla [get]
func (h *ProductHandler) DownloadTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := importer.WriteTemplate(&buf); err != nil {
		respondError(c, err)
		return
	}

	sendCSV(c, importer.TemplateFilename, buf.Bytes())
}

// @Summary Export the catalog
// @Description Full catalog as CSV in the import format
// @Tags productos
// @Produce text/csv
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /productos/exportar [get]
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.productService.ExportProducts(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("productos_%s.csv", time.Now().Format("2006-01-02"))
	sendCSV(c, filename, buf.Bytes())
}

func sendCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
