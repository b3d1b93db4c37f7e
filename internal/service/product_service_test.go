package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory_repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// failingCreateRepo 新增商品一律失敗
type failingCreateRepo struct {
	*memory_repo.ProductRepo
}

func (r failingCreateRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return errors.New("insert failed")
}

type ProductServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	repo   *memory_repo.ProductRepo
	images *memory_repo.ImageStore
	svc    *ProductService
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = memory_repo.NewProductRepo()
	s.images = memory_repo.NewImageStore("/api/v1/images/")
	s.svc = NewProductService(s.repo, s.images, nil)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

func upload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Reader: strings.NewReader("png-bytes")}
}

func validProductInput() ProductInput {
	return ProductInput{
		Name:     "Ocean Mist",
		Brand:    "Pure Hues",
		Finish:   "Matte",
		Price:    decimal.RequireFromString("34.50"),
		Variants: []model.ColorVariant{{Name: "Mist", Hex: "#A0C4D8", Stock: 4}, {Name: "Deep", Hex: "#1F3A5F", Stock: 6}},
		IsActive: true,
	}
}

func (s *ProductServiceTestSuite) TestCreateProduct() {
	p, err := s.svc.CreateProduct(s.ctx, validProductInput(), upload("can.png"))
	s.Require().NoError(err)
	s.NotEmpty(p.ID)
	s.Equal(10, p.Stock)
	s.Equal(int64(1), p.Version)
	s.Equal(constants.DefaultImageHint, p.ImageHint)
	s.GreaterOrEqual(p.Popularity, 1)
	s.LessOrEqual(p.Popularity, constants.MaxInitialPopularity)
	s.Equal("products/"+p.ID+"/can.png", p.ImagePath)
	s.Equal("/api/v1/images/products/"+p.ID+"/can.png", p.ImageURL)
	s.True(s.images.Exists(p.ImagePath))

	stored, err := s.svc.GetProduct(s.ctx, p.ID, true)
	s.Require().NoError(err)
	s.Equal(p.Name, stored.Name)
}

func (s *ProductServiceTestSuite) TestCreateProductValidation() {
	testCases := []struct {
		name   string
		modify func(in *ProductInput)
		image  *Upload
	}{
		{name: "missing name", modify: func(in *ProductInput) { in.Name = " " }, image: upload("a.png")},
		{name: "zero price", modify: func(in *ProductInput) { in.Price = decimal.Zero }, image: upload("a.png")},
		{name: "no variants", modify: func(in *ProductInput) { in.Variants = nil }, image: upload("a.png")},
		{name: "bad hex", modify: func(in *ProductInput) { in.Variants[0].Hex = "blue" }, image: upload("a.png")},
		{name: "negative stock", modify: func(in *ProductInput) { in.Variants[0].Stock = -1 }, image: upload("a.png")},
		{name: "missing image", modify: func(in *ProductInput) {}, image: nil},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			in := validProductInput()
			tc.modify(&in)
			_, err := s.svc.CreateProduct(s.ctx, in, tc.image)
			s.ErrorIs(err, ErrInvalidProduct)
		})
	}
	count, err := s.svc.CountProducts(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ProductServiceTestSuite) TestCreateProductRemovesImageOnInsertFailure() {
	svc := NewProductService(failingCreateRepo{s.repo}, s.images, nil)
	_, err := svc.CreateProduct(s.ctx, validProductInput(), upload("can.png"))
	s.Require().Error(err)

	s.Zero(s.images.Len())
	products, err := s.repo.GetProducts(s.ctx, model.ProductFilter{})
	s.Require().NoError(err)
	s.Empty(products)
}

func (s *ProductServiceTestSuite) TestGetProductInactive() {
	in := validProductInput()
	in.IsActive = false
	p, err := s.svc.CreateProduct(s.ctx, in, upload("can.png"))
	s.Require().NoError(err)

	_, err = s.svc.GetProduct(s.ctx, p.ID, true)
	s.ErrorIs(err, ErrProductNotFound)
	got, err := s.svc.GetProduct(s.ctx, p.ID, false)
	s.Require().NoError(err)
	s.False(got.IsActive)
}

func (s *ProductServiceTestSuite) TestListProductsActiveOnly() {
	inactive := validProductInput()
	inactive.Name = "Hidden"
	inactive.IsActive = false
	_, err := s.svc.CreateProduct(s.ctx, inactive, upload("a.png"))
	s.Require().NoError(err)
	_, err = s.svc.CreateProduct(s.ctx, validProductInput(), upload("b.png"))
	s.Require().NoError(err)

	active, err := s.svc.ListProducts(s.ctx, model.ProductFilter{ActiveOnly: true})
	s.Require().NoError(err)
	s.Len(active, 1)
	all, err := s.svc.ListProducts(s.ctx, model.ProductFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ProductServiceTestSuite) TestUpdateProductReplacesImage() {
	p, err := s.svc.CreateProduct(s.ctx, validProductInput(), upload("old.png"))
	s.Require().NoError(err)

	name := "Ocean Mist II"
	updated, err := s.svc.UpdateProduct(s.ctx, p.ID, model.ProductPatch{
		Name:     &name,
		Variants: []model.ColorVariant{{Name: "Mist", Hex: "#A0C4D8", Stock: 1}},
	}, upload("new.png"))
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.Equal(1, updated.Stock)
	s.Equal(p.Version+1, updated.Version)
	s.False(s.images.Exists(p.ImagePath))
	s.True(s.images.Exists(updated.ImagePath))

	rc, contentType, err := s.images.Open(s.ctx, updated.ImagePath)
	s.Require().NoError(err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal("png-bytes", string(data))
	s.Equal("image/png", contentType)
}

func (s *ProductServiceTestSuite) TestUpdateProductErrors() {
	p, err := s.svc.CreateProduct(s.ctx, validProductInput(), upload("a.png"))
	s.Require().NoError(err)

	empty := " "
	_, err = s.svc.UpdateProduct(s.ctx, p.ID, model.ProductPatch{Name: &empty}, nil)
	s.ErrorIs(err, ErrInvalidProduct)

	negative := decimal.RequireFromString("-1")
	_, err = s.svc.UpdateProduct(s.ctx, p.ID, model.ProductPatch{Price: &negative}, nil)
	s.ErrorIs(err, ErrInvalidProduct)

	_, err = s.svc.UpdateProduct(s.ctx, "missing", model.ProductPatch{}, nil)
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductServiceTestSuite) TestDeleteProduct() {
	p, err := s.svc.CreateProduct(s.ctx, validProductInput(), upload("a.png"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteProduct(s.ctx, p.ID))
	s.False(s.images.Exists(p.ImagePath))
	_, err = s.svc.GetProduct(s.ctx, p.ID, false)
	s.ErrorIs(err, ErrProductNotFound)

	// 圖片已不存在仍可刪除
	s.NoError(s.svc.DeleteProduct(s.ctx, p.ID))
}

func (s *ProductServiceTestSuite) TestObjectPath() {
	testCases := []struct {
		filename string
		expect   string
	}{
		{filename: "can.png", expect: "products/1/can.png"},
		{filename: "../../etc/passwd", expect: "products/1/passwd"},
		{filename: `C:\Users\me\photo.jpg`, expect: "products/1/photo.jpg"},
		{filename: "", expect: "products/1/upload"},
	}
	for _, tc := range testCases {
		s.Equal(tc.expect, objectPath("products", "1", tc.filename))
	}
}
