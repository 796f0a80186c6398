package cmd

import (
	"fmt"
	"log/slog"

	apihttp "ordering/internal/adapters/in/http"
	"ordering/internal/adapters/out/courier"
	"ordering/internal/adapters/out/notify"
	"ordering/internal/adapters/out/pos"
	"ordering/internal/adapters/out/postgres/orderrepo"
	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/jobs"
	"ordering/internal/pkg/locker"

	"gorm.io/gorm"
)

// CompositionRoot wires the application graph once: repository, notification
// hub, provider registries and the transitioner are singletons; handlers are
// created on demand around them.
type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger

	repo            *orderrepo.GormOrderRepository
	hub             *notify.Hub
	posRegistry     *pos.Registry
	courierRegistry *courier.Registry
	transitioner    *commands.Transitioner
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	posRegistry, err := buildPosRegistry(configs)
	if err != nil {
		return nil, fmt.Errorf("build pos registry: %w", err)
	}
	courierRegistry, err := buildCourierRegistry(configs)
	if err != nil {
		return nil, fmt.Errorf("build courier registry: %w", err)
	}

	repo := orderrepo.NewGormOrderRepository(gormDB)
	hub := notify.NewHub()

	transitioner, err := commands.NewTransitioner(
		repo,
		locker.NewKeyedMutex(),
		hub,
		courierRegistry,
		configs.CourierProvider,
		ports.RestaurantInfo{
			Name:    configs.RestaurantName,
			Phone:   configs.RestaurantPhone,
			Address: configs.RestaurantAddress,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("build transitioner: %w", err)
	}

	return &CompositionRoot{
		config:          configs,
		gormDB:          gormDB,
		logger:          logger,
		repo:            repo,
		hub:             hub,
		posRegistry:     posRegistry,
		courierRegistry: courierRegistry,
		transitioner:    transitioner,
	}, nil
}

func buildPosRegistry(configs Config) (*pos.Registry, error) {
	var adapters []ports.PosAdapter

	if configs.SquareAPIURL != "" {
		square, err := pos.NewSquareAdapter(pos.SquareConfig{
			APIURL:      configs.SquareAPIURL,
			AccessToken: configs.SquareAccessToken,
			LocationID:  configs.SquareLocationID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, square)
	}

	if configs.ToastAPIURL != "" {
		toast, err := pos.NewToastAdapter(pos.ToastConfig{
			APIURL:       configs.ToastAPIURL,
			APIKey:       configs.ToastAPIKey,
			RestaurantID: configs.ToastRestaurantID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, toast)
	}

	if configs.CloverAPIURL != "" {
		clover, err := pos.NewCloverAdapter(pos.CloverConfig{
			APIURL:      configs.CloverAPIURL,
			AccessToken: configs.CloverAccessToken,
			MerchantID:  configs.CloverMerchantID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, clover)
	}

	return pos.NewRegistry(adapters...)
}

func buildCourierRegistry(configs Config) (*courier.Registry, error) {
	var adapters []ports.CourierAdapter

	if configs.DoorDashAPIURL != "" {
		doordash, err := courier.NewDoorDashAdapter(courier.DoorDashConfig{
			APIURL:      configs.DoorDashAPIURL,
			AccessToken: configs.DoorDashAccessToken,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, doordash)
	}

	if configs.UberAPIURL != "" {
		uber, err := courier.NewUberAdapter(courier.UberConfig{
			APIURL:      configs.UberAPIURL,
			CustomerID:  configs.UberCustomerID,
			AccessToken: configs.UberAccessToken,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, uber)
	}

	return courier.NewRegistry(adapters...)
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() (commands.PlaceOrderCommandHandler, error) {
	calculator, err := c.CreateTotalsCalculator()
	if err != nil {
		return commands.PlaceOrderCommandHandler{}, err
	}
	return commands.NewPlaceOrderCommandHandler(c.repo, calculator, c.posRegistry, c.transitioner, c.hub, c.logger)
}

func (c *CompositionRoot) CreateApplyPosWebhookCommandHandler() (commands.ApplyPosWebhookCommandHandler, error) {
	return commands.NewApplyPosWebhookCommandHandler(c.repo, c.posRegistry, c.transitioner, c.logger)
}

func (c *CompositionRoot) CreateApplyCourierWebhookCommandHandler() (commands.ApplyCourierWebhookCommandHandler, error) {
	return commands.NewApplyCourierWebhookCommandHandler(c.repo, c.courierRegistry, c.transitioner, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() (queries.GetOrderQueryHandler, error) {
	return queries.NewGetOrderQueryHandler(c.repo)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() (queries.GetActiveOrdersQueryHandler, error) {
	return queries.NewGetActiveOrdersQueryHandler(c.repo)
}

func (c *CompositionRoot) CreateTotalsCalculator() (services.TotalsCalculator, error) {
	return services.NewTotalsCalculator(
		c.config.TaxRatePPM,
		c.config.ServiceFeeRatePPM,
		services.DefaultDeliveryFeePolicy(),
	)
}

// CreateHTTPServer assembles the HTTP surface over the shared singletons.
func (c *CompositionRoot) CreateHTTPServer() (*apihttp.Server, error) {
	placeOrder, err := c.CreatePlaceOrderCommandHandler()
	if err != nil {
		return nil, err
	}
	applyPosWebhook, err := c.CreateApplyPosWebhookCommandHandler()
	if err != nil {
		return nil, err
	}
	applyCourierWebhook, err := c.CreateApplyCourierWebhookCommandHandler()
	if err != nil {
		return nil, err
	}
	getOrder, err := c.CreateGetOrderQueryHandler()
	if err != nil {
		return nil, err
	}
	getActive, err := c.CreateGetActiveOrdersQueryHandler()
	if err != nil {
		return nil, err
	}

	return apihttp.NewServer(placeOrder, applyPosWebhook, applyCourierWebhook, getOrder, getActive, c.hub), nil
}

// CreateJobManager assembles the background jobs. The simulation job is only
// included when the deployment opts in.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	dispatchRetry := jobs.NewDispatchRetryJob(c.repo, c.transitioner, c.logger)

	var simulation *jobs.SimulationJob
	if c.config.SimulateProviders {
		posWebhooks, err := c.CreateApplyPosWebhookCommandHandler()
		if err != nil {
			return nil, err
		}
		courierWebhooks, err := c.CreateApplyCourierWebhookCommandHandler()
		if err != nil {
			return nil, err
		}
		simulation = jobs.NewSimulationJob(c.repo, posWebhooks, courierWebhooks, c.logger)
	}

	return jobs.NewJobManager(dispatchRetry, simulation), nil
}
