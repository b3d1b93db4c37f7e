package mongo_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 固定的設定文件 id
const productAttributesDocID = "productAttributes"

type TestimonialRepo struct {
	coll *mongo.Collection
}

func NewTestimonialRepo(db *mongo.Database) *TestimonialRepo {
	return &TestimonialRepo{coll: db.Collection(TestimonialCollection)}
}

func (r *TestimonialRepo) GetTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "priority", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query testimonials: %w", err)
	}
	defer cur.Close(ctx)
	out := []model.Testimonial{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode testimonials: %w", err)
	}
	return out, nil
}

func (r *TestimonialRepo) GetTestimonial(ctx context.Context, id string) (*model.Testimonial, error) {
	var t model.Testimonial
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get testimonial %s: %w", id, err)
	}
	return &t, nil
}

func (r *TestimonialRepo) CreateTestimonial(ctx context.Context, testimonial *model.Testimonial) error {
	_, err := r.coll.InsertOne(ctx, testimonial)
	return err
}

func (r *TestimonialRepo) UpdateTestimonial(ctx context.Context, testimonial *model.Testimonial) error {
	return replaceByID(ctx, r.coll, testimonial.ID, testimonial)
}

func (r *TestimonialRepo) DeleteTestimonial(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type VisualizerColorRepo struct {
	coll *mongo.Collection
}

func NewVisualizerColorRepo(db *mongo.Database) *VisualizerColorRepo {
	return &VisualizerColorRepo{coll: db.Collection(VisualizerColorCollection)}
}

func (r *VisualizerColorRepo) GetVisualizerColors(ctx context.Context) ([]model.VisualizerColor, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query visualizer colors: %w", err)
	}
	defer cur.Close(ctx)
	out := []model.VisualizerColor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode visualizer colors: %w", err)
	}
	return out, nil
}

func (r *VisualizerColorRepo) CreateVisualizerColor(ctx context.Context, color *model.VisualizerColor) error {
	_, err := r.coll.InsertOne(ctx, color)
	return err
}

func (r *VisualizerColorRepo) UpdateVisualizerColor(ctx context.Context, color *model.VisualizerColor) error {
	return replaceByID(ctx, r.coll, color.ID, color)
}

func (r *VisualizerColorRepo) DeleteVisualizerColor(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type ConfigurationRepo struct {
	coll *mongo.Collection
}

func NewConfigurationRepo(db *mongo.Database) *ConfigurationRepo {
	return &ConfigurationRepo{coll: db.Collection(ConfigurationCollection)}
}

func (r *ConfigurationRepo) GetProductAttributes(ctx context.Context) (*model.ProductAttributes, error) {
	var attrs model.ProductAttributes
	if err := r.coll.FindOne(ctx, bson.M{"_id": productAttributesDocID}).Decode(&attrs); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product attributes: %w", err)
	}
	return &attrs, nil
}

func (r *ConfigurationRepo) SaveProductAttributes(ctx context.Context, attrs model.ProductAttributes) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": productAttributesDocID},
		bson.M{"$set": attrs},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save product attributes: %w", err)
	}
	return nil
}

type EstimationRepo struct {
	coll *mongo.Collection
}

func NewEstimationRepo(db *mongo.Database) *EstimationRepo {
	return &EstimationRepo{coll: db.Collection(EstimationCollection)}
}

func (r *EstimationRepo) GetEstimations(ctx context.Context) ([]model.EstimationRequest, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query estimations: %w", err)
	}
	defer cur.Close(ctx)
	out := []model.EstimationRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode estimations: %w", err)
	}
	return out, nil
}

func (r *EstimationRepo) GetEstimation(ctx context.Context, id string) (*model.EstimationRequest, error) {
	var e model.EstimationRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get estimation %s: %w", id, err)
	}
	return &e, nil
}

func (r *EstimationRepo) CreateEstimation(ctx context.Context, req *model.EstimationRequest) error {
	_, err := r.coll.InsertOne(ctx, req)
	return err
}

func (r *EstimationRepo) UpdateEstimation(ctx context.Context, req *model.EstimationRequest) error {
	return replaceByID(ctx, r.coll, req.ID, req)
}

func (r *EstimationRepo) DeleteEstimation(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", repository.ErrNotFound, coll.Name(), id)
	}
	return nil
}

var (
	_ repository.ITestimonialRepository     = (*TestimonialRepo)(nil)
	_ repository.IVisualizerColorRepository = (*VisualizerColorRepo)(nil)
	_ repository.IConfigurationRepository   = (*ConfigurationRepo)(nil)
	_ repository.IEstimationRepository      = (*EstimationRepo)(nil)
)
