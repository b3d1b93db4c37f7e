package mongo_repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepo struct {
	coll *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	if db == nil {
		panic("ProductRepo dependency db is nil")
	}
	return &ProductRepo{coll: db.Collection(ProductCollection)}
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product %s: %w", product.ID, err)
	}
	return nil
}

func (r *ProductRepo) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

func buildProductQuery(filter model.ProductFilter) bson.M {
	query := bson.M{}
	if filter.ActiveOnly {
		query["isActive"] = true
	}
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
		}
	}
	if len(filter.Brands) > 0 {
		query["brand"] = bson.M{"$in": filter.Brands}
	}
	if len(filter.Finishes) > 0 {
		query["finish"] = bson.M{"$in": filter.Finishes}
	}
	if len(filter.ColorFamilies) > 0 {
		query["colorFamily"] = bson.M{"$in": filter.ColorFamilies}
	}
	return query
}

func searchPattern(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

func productSort(by model.ProductSort) bson.D {
	switch by {
	case model.SortPopularityDesc:
		return bson.D{{Key: "popularity", Value: -1}, {Key: "name", Value: 1}}
	case model.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "name", Value: 1}}
	case model.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "name", Value: 1}}
	default:
		return bson.D{{Key: "name", Value: 1}}
	}
}

func (r *ProductRepo) GetProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	opts := options.Find().SetSort(productSort(filter.Sort))
	cur, err := r.coll.Find(ctx, buildProductQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cur.Close(ctx)

	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) CountProducts(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	setIf := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setIf("name", patch.Name)
	setIf("brand", patch.Brand)
	setIf("category", patch.Category)
	setIf("finish", patch.Finish)
	setIf("colorFamily", patch.ColorFamily)
	setIf("description", patch.Description)
	setIf("imageUrl", patch.ImageURL)
	setIf("imagePath", patch.ImagePath)
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	if patch.Variants != nil {
		set["variants"] = patch.Variants
		set["stock"] = model.SumVariantStock(patch.Variants)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", repository.ErrProductNotFound, id)
	}
	return nil
}

// UpdateProductStock 以 {_id, version} 為條件更新，比對不到時再確認是不存在還是版本不符
func (r *ProductRepo) UpdateProductStock(ctx context.Context, id string, patch model.StockPatch) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "version": patch.ExpectedVersion},
		bson.M{
			"$set": bson.M{
				"variants":  patch.Variants,
				"stock":     patch.TotalStock,
				"updatedAt": time.Now().UTC(),
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update stock of product %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check product %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrProductNotFound, id)
	}
	return fmt.Errorf("%w: product %s, expected version %d", repository.ErrVersionConflict, id, patch.ExpectedVersion)
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

var _ repository.IProductRepository = (*ProductRepo)(nil)
