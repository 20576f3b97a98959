package controllers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
)

// maxImageBytes caps a single product-image upload.
const maxImageBytes = 8 << 20

type ProductsController struct {
	products *services.ProductsService
}

func NewProductsController(db *gorm.DB) *ProductsController {
	return &ProductsController{products: services.NewProductsService(db)}
}

func queryFloat(c *ctx.Context, key string) *float64 {
	if v := c.Query(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func queryInt(c *ctx.Context, key string) *int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}

func queryBool(c *ctx.Context, key string) *bool {
	if v := c.Query(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

func queryTime(c *ctx.Context, key string) *time.Time {
	if v := c.Query(key); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return &t
		}
	}
	return nil
}

func (pc *ProductsController) Index(c *ctx.Context) {
	page, limit := pageParams(c)
	filter := repositories.ProductFilter{
		Name:        c.Query("name"),
		Description: c.Query("description"),
		MinPrice:    queryFloat(c, "min_price"),
		MaxPrice:    queryFloat(c, "max_price"),
		MinStock:    queryInt(c, "min_stock"),
		MaxStock:    queryInt(c, "max_stock"),
		Status:      queryBool(c, "status"),
		Page:        page,
		Limit:       limit,
	}

	products, pagination, err := pc.products.GetAll(c.Context(), filter)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"items": products, "pagination": pagination})
}

func (pc *ProductsController) Show(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Product not found")
		return
	}

	product, err := pc.products.GetByID(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

func (pc *ProductsController) Create(c *ctx.Context) {
	var in services.CreateProductInput
	if !c.BindJSON(&in) {
		return
	}

	product, err := pc.products.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusCreated, "Product created", product)
}

func (pc *ProductsController) Update(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Product not found")
		return
	}

	var in services.UpdateProductInput
	if !c.BindJSON(&in) {
		return
	}

	product, err := pc.products.Update(c.Context(), id, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product updated", product)
}

func (pc *ProductsController) Delete(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Product not found")
		return
	}

	if err := pc.products.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product deleted", nil)
}

func (pc *ProductsController) UploadImage(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Product not found")
		return
	}

	if err := c.R.ParseMultipartForm(maxImageBytes); err != nil {
		c.Error(http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.Error(http.StatusBadRequest, "Unreadable image file")
		return
	}

	image, err := pc.products.AttachImage(c.Context(), id, header.Filename, content)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusCreated, "Image uploaded", image)
}

func (pc *ProductsController) DeleteImage(c *ctx.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Product not found")
		return
	}
	imageID, ok := paramUint(c, "imageId")
	if !ok {
		c.NotFound("Image not found")
		return
	}

	if err := pc.products.DetachImage(c.Context(), productID, imageID); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Image deleted", nil)
}
