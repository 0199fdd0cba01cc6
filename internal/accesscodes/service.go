package accesscodes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
	"github.com/mambaservices/storefront-backend/pkg/metrics"
)

// Service defines the pool behavior needed by the controller, the fulfillment
// pipeline, and the seeder.
type Service interface {
	Claim(ctx context.Context, req ClaimRequest) (*ClaimResponse, error)
	ClaimForSession(ctx context.Context, productType enums.ProductFamily, email, sessionID string, orderID *string) (*models.AccessCode, error)
	CountAvailable(ctx context.Context, productType enums.ProductFamily) (int64, error)
	Seed(ctx context.Context, codes []string, obywatelCount int) (int64, error)
}

type service struct {
	repo          Repository
	metrics       *metrics.FulfillmentMetrics
	logg          *logger.Logger
	generatorLink string
	now           func() time.Time
}

// ServiceParams bundles the dependencies required to build a pool service.
type ServiceParams struct {
	Repo          Repository
	Metrics       *metrics.FulfillmentMetrics
	Logger        *logger.Logger
	GeneratorLink string
	Now           func() time.Time
}

// NewService constructs a pool service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("access code repository is required")
	}
	if params.GeneratorLink == "" {
		return nil, fmt.Errorf("generator link is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:          params.Repo,
		metrics:       params.Metrics,
		logg:          params.Logger,
		generatorLink: params.GeneratorLink,
		now:           now,
	}, nil
}

func (s *service) Claim(ctx context.Context, req ClaimRequest) (*ClaimResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	family := familyForProduct(req.ProductID)

	claim := Claim{Email: email, At: s.now()}
	if req.OrderID != "" {
		orderID := req.OrderID
		claim.OrderID = &orderID
	}

	code, err := s.repo.ClaimUnused(ctx, family, claim)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			s.reportExhausted(ctx, family)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no access codes available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim access code")
	}

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
		s.logg.Info(s.logg.WithField(ctx, "product_type", family.String()), "access_code.claimed")
	}
	return &ClaimResponse{Code: code.Code, GeneratorLink: s.generatorLink}, nil
}

// ClaimForSession is the webhook-side claim. A session id that already owns a
// code returns that code again instead of burning a second one, which makes
// event redelivery safe.
func (s *service) ClaimForSession(ctx context.Context, productType enums.ProductFamily, email, sessionID string, orderID *string) (*models.AccessCode, error) {
	if sessionID != "" {
		existing, err := s.repo.FindByStripeSessionID(ctx, sessionID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	claim := Claim{Email: strings.ToLower(strings.TrimSpace(email)), OrderID: orderID, At: s.now()}
	if sessionID != "" {
		sid := sessionID
		claim.StripeSessionID = &sid
	}

	code, err := s.repo.ClaimUnused(ctx, productType, claim)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			s.reportExhausted(ctx, productType)
		}
		return nil, err
	}
	return code, nil
}

func (s *service) CountAvailable(ctx context.Context, productType enums.ProductFamily) (int64, error) {
	return s.repo.CountAvailable(ctx, productType)
}

// Seed loads the static pool: the first obywatelCount codes become obywatel
// codes, the remainder receipts codes. Codes already present are skipped.
func (s *service) Seed(ctx context.Context, codes []string, obywatelCount int) (int64, error) {
	rows := make([]models.AccessCode, 0, len(codes))
	for i, code := range codes {
		family := enums.ProductFamilyReceipts
		if i < obywatelCount {
			family = enums.ProductFamilyObywatel
		}
		rows = append(rows, models.AccessCode{Code: code, ProductType: family})
	}

	inserted, err := s.repo.Insert(ctx, rows)
	if err != nil {
		return 0, err
	}
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "inserted", inserted)
		s.logg.Info(s.logg.WithField(ctx, "total", len(codes)), "access_code.pool_seeded")
	}
	return inserted, nil
}

func (s *service) reportExhausted(ctx context.Context, family enums.ProductFamily) {
	if s.metrics != nil {
		s.metrics.IncPoolExhausted(family.String())
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_type", family.String()), "access_code.pool_exhausted")
	}
}

// familyForProduct maps a storefront product id onto a pool partition.
func familyForProduct(productID string) enums.ProductFamily {
	if family, err := enums.ParseProductFamily(productID); err == nil {
		return family
	}
	if strings.Contains(strings.ToLower(productID), "receipts") {
		return enums.ProductFamilyReceipts
	}
	return enums.ProductFamilyObywatel
}
