package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bundlehub-client/internal/api"
	"bundlehub-client/internal/cache"
	"bundlehub-client/internal/callback"
	"bundlehub-client/internal/config"
	"bundlehub-client/internal/logger"
	"bundlehub-client/internal/model"
	"bundlehub-client/internal/repository"
	"bundlehub-client/internal/service"
	"bundlehub-client/internal/session"
	"bundlehub-client/pkg/apierror"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.App.IsDevelopment() {
		log.Debug("running in development mode", zap.String("backend", cfg.Backend.BaseURL))
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	// Cart partition repository based on config
	var repo repository.PartitionRepository
	switch cfg.CartDB.Type {
	case "mysql":
		mysqlRepo, err := repository.NewMySQLCartRepository(cfg.CartDB.DSN())
		if err != nil {
			log.Fatal("failed to initialize MySQL cart store", zap.Error(err))
		}
		repo = mysqlRepo
	case "memory":
		repo = repository.NewMemoryCartRepository()
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteCartRepository(cfg.CartDB.Path)
		if err != nil {
			log.Fatal("failed to initialize SQLite cart store", zap.Error(err))
		}
		repo = sqliteRepo
	}
	defer repo.Close()

	// Session token mirror (optional Redis)
	var mirror session.Mirror = session.NoopMirror{}
	if cfg.Session.MirrorType == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddress(),
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("session mirror Redis unavailable, running memory-only", zap.Error(err))
		} else {
			mirror = session.NewRedisMirror(redisClient, cfg.Session.TTL)
		}
		cancel()
	}
	tokens := session.NewStore(ctx, mirror, log)

	// Response cache
	var responseCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}))
		if err != nil {
			log.Warn("cache Redis unavailable, falling back to memory", zap.Error(err))
			responseCache = cache.NewMemoryCache()
		} else {
			responseCache = redisCache
		}
	default:
		responseCache = cache.NewMemoryCache()
	}

	apiClient, err := api.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, tokens, log)
	if err != nil {
		log.Fatal("failed to initialize backend client", zap.Error(err))
	}

	cartStore := service.NewCartStore(repo, log)
	syncer := service.NewSyncer(apiClient, cartStore, repo, responseCache, log)
	store := service.NewStorefront(apiClient, tokens, cartStore, syncer, responseCache, cfg.Cache.TTL, log)
	poller := service.NewOrderPoller(apiClient, tokens, responseCache, cfg.Poller.Interval, cfg.Cache.TTL, log)

	if err := run(ctx, cfg, log, store, poller, responseCache, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, store *service.Storefront, poller *service.OrderPoller, responseCache cache.Cache, command string, args []string) error {
	// Commands other than the auth entry points need the cart scope to match
	// the current identity before acting.
	switch command {
	case "login", "register", "callback":
	default:
		if _, err := store.Resolve(ctx); err != nil {
			return err
		}
	}

	switch command {
	case "login":
		if len(args) < 2 {
			return fmt.Errorf("usage: login <identifier> <password>")
		}
		user, err := store.Login(ctx, model.Credentials{Identifier: args[0], Password: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.Username, user.Role)
		return nil

	case "register":
		if len(args) < 3 {
			return fmt.Errorf("usage: register <username> <email> <password> [phone]")
		}
		reg := model.Registration{Username: args[0], Email: args[1], Password: args[2]}
		if len(args) > 3 {
			reg.PhoneNumber = args[3]
		}
		user, err := store.Register(ctx, reg)
		if err != nil {
			return err
		}
		fmt.Printf("account created: %s\n", user.Username)
		return nil

	case "logout":
		if err := store.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		user, err := store.Resolve(ctx)
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Println("guest")
			return nil
		}
		fmt.Printf("%s (%s) verified=%v balance=%.2f\n", user.Username, user.Role, user.IsVerified, user.Balance)
		return nil

	case "products":
		products, err := store.API().Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%s  %-8s %-8s %s  %.2f\n", p.ID, p.Network, p.DataAmount, p.Name, p.Price)
		}
		return nil

	case "product-add":
		if len(args) < 4 {
			return fmt.Errorf("usage: product-add <name> <network> <dataAmount> <userPrice> [agentPrice]")
		}
		userPrice, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid user price: %w", err)
		}
		p := model.NewProduct{Name: args[0], Network: args[1], DataAmount: args[2], UserPrice: &userPrice}
		if len(args) > 4 {
			agentPrice, err := strconv.ParseFloat(args[4], 64)
			if err != nil {
				return fmt.Errorf("invalid agent price: %w", err)
			}
			p.AgentPrice = &agentPrice
		}
		created, err := store.API().CreateProduct(ctx, p)
		if err != nil {
			return err
		}
		fmt.Printf("created product %s\n", created.ID)
		return nil

	case "cart":
		return showCart(ctx, store)

	case "local-add":
		if len(args) < 2 {
			return fmt.Errorf("usage: local-add <productID> <phone> [qty]")
		}
		return localAdd(ctx, store, args)

	case "cart-add":
		if len(args) < 1 {
			return fmt.Errorf("usage: cart-add <productID> [phone] [qty]")
		}
		req := model.CartAddRequest{ProductID: args[0], Quantity: 1}
		if len(args) > 1 {
			req.PhoneNumber = args[1]
		}
		if len(args) > 2 {
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity: %w", err)
			}
			req.Quantity = qty
		}
		if err := store.AddToCart(ctx, req); err != nil {
			return err
		}
		fmt.Println("added to cart")
		return nil

	case "cart-remove":
		if len(args) < 1 {
			return fmt.Errorf("usage: cart-remove <productID>")
		}
		store.Cart().RemoveByProduct(ctx, args[0])
		if err := store.API().CartRemove(ctx, args[0]); err != nil {
			log.Warn("server cart remove failed", zap.Error(err))
		}
		fmt.Println("removed")
		return nil

	case "cart-remove-line":
		if len(args) < 1 {
			return fmt.Errorf("usage: cart-remove-line <lineID>")
		}
		store.Cart().RemoveByID(ctx, args[0])
		fmt.Println("removed")
		return nil

	case "cart-clear":
		store.Cart().Clear(ctx)
		if err := store.API().CartClear(ctx); err != nil {
			log.Warn("server cart clear failed", zap.Error(err))
		}
		fmt.Println("cart cleared")
		return nil

	case "checkout":
		paymentMethod := model.PaymentPaystack
		if len(args) > 0 {
			paymentMethod = args[0]
		}
		result, err := store.Checkout(ctx, paymentMethod)
		if err != nil {
			return err
		}
		if url := result.RedirectURL(); url != "" {
			fmt.Printf("complete payment at: %s\n", url)
			fmt.Printf("return listener: http://%s/payment/return\n", cfg.Callback.Address())
			return nil
		}
		fmt.Println("order completed")
		return nil

	case "buy":
		if len(args) < 1 {
			return fmt.Errorf("usage: buy <productID>")
		}
		order, err := store.API().CreateOrder(ctx, model.NewOrder{ProductID: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("order placed: %s  %s\n", order.ID, order.Status)
		return nil

	case "orders":
		page, limit := pageArgs(args)
		result, err := store.MyOrders(ctx, page, limit)
		if err != nil {
			return err
		}
		for _, o := range result.Orders {
			fmt.Printf("%s  %-10s %s %s -> %s\n", o.ID, o.Status, o.ProductName, o.DataAmount, o.PhoneNumber)
		}
		fmt.Printf("page %d/%d (%d total)\n", result.Pagination.Page, result.Pagination.Pages, result.Pagination.Total)
		return nil

	case "order":
		if len(args) < 1 {
			return fmt.Errorf("usage: order <orderID>")
		}
		order, err := store.GetOrder(ctx, args[0])
		if apierror.IsNotFound(err) {
			return fmt.Errorf("order %s not found", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  %s %s -> %s\n", order.ID, order.Status, order.ProductName, order.DataAmount, order.PhoneNumber)
		return nil

	case "watch":
		if len(args) < 1 {
			return fmt.Errorf("usage: watch <orderID>")
		}
		return watchOrder(ctx, cfg, store, poller, args[0])

	case "agents":
		agents, err := store.API().Agents(ctx)
		if err != nil {
			return err
		}
		printUsers(agents)
		return nil

	case "agents-unverified":
		agents, err := store.API().UnverifiedAgents(ctx)
		if err != nil {
			return err
		}
		printUsers(agents)
		return nil

	case "verify-agent":
		if len(args) < 1 {
			return fmt.Errorf("usage: verify-agent <userID>")
		}
		user, err := store.API().VerifyAgent(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("verified %s\n", user.Username)
		return nil

	case "wallet-load":
		if len(args) < 2 {
			return fmt.Errorf("usage: wallet-load <userID> <amount>")
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		if err := store.API().LoadWallet(ctx, args[0], amount); err != nil {
			return err
		}
		fmt.Println("wallet loaded")
		return nil

	case "totals":
		totals, err := store.API().Totals(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("orders=%d revenue=%.2f users=%d agents=%d\n",
			totals.TotalOrders, totals.TotalRevenue, totals.TotalUsers, totals.TotalAgents)
		return nil

	case "admin-orders":
		page, limit := pageArgs(args)
		result, err := store.API().AdminOrders(ctx, page, limit)
		if err != nil {
			return err
		}
		for _, o := range result.Orders {
			fmt.Printf("%s  %-10s user=%s %s\n", o.ID, o.Status, o.UserID, o.ProductName)
		}
		return nil

	case "pay-init":
		if len(args) < 2 {
			return fmt.Errorf("usage: pay-init <amountMinorUnits> <email>")
		}
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		auth, err := store.API().PaystackInitialize(ctx, model.PaystackInit{Amount: amount, Email: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("authorization url: %s\n", auth.Data.AuthorizationURL)
		return nil

	case "callback":
		srv := callback.New(cfg.Callback.Address(), responseCache, log)
		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		return srv.Start()

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func showCart(ctx context.Context, store *service.Storefront) error {
	local := store.Cart().Lines()
	if len(local) > 0 {
		fmt.Println("local (not yet synced):")
		for _, line := range local {
			fmt.Printf("  %s  %s %s x%d -> %s  %.2f\n",
				line.ID, line.Network, line.DataAmount, line.Quantity, line.PhoneNumber, line.Price)
		}
	}

	server, err := store.ServerCart(ctx)
	if err != nil {
		return err
	}
	if len(server) > 0 {
		fmt.Println("server:")
		for _, line := range server {
			fmt.Printf("  %s  %s %s x%d\n",
				line.Product.ID, line.Product.Network, line.Product.DataAmount, line.Quantity)
		}
	}
	if len(local) == 0 && len(server) == 0 {
		fmt.Println("cart is empty")
	}
	return nil
}

func localAdd(ctx context.Context, store *service.Storefront, args []string) error {
	products, err := store.API().Products(ctx)
	if err != nil {
		return err
	}

	var product *model.Product
	for i := range products {
		if products[i].ID == args[0] {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return fmt.Errorf("unknown product %q", args[0])
	}

	quantity := 1
	if len(args) > 2 {
		quantity, err = strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
	}

	role := model.RoleUser
	if user, err := store.Resolve(ctx); err == nil && user != nil {
		role = user.Role
	}

	lineID := store.Cart().Add(ctx, model.CartLine{
		ProductID:   product.ID,
		Name:        product.Name,
		Network:     product.Network,
		DataAmount:  product.DataAmount,
		Price:       product.PriceFor(role),
		PhoneNumber: args[1],
		Quantity:    quantity,
	})
	fmt.Printf("added line %s\n", lineID)
	return nil
}

func watchOrder(ctx context.Context, cfg *config.Config, store *service.Storefront, poller *service.OrderPoller, orderID string) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := poller.Watch(watchCtx, orderID, true)
	defer stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Poller.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			order, err := store.GetOrder(watchCtx, orderID)
			if err != nil {
				continue
			}
			fmt.Printf("%s  %s\n", order.ID, order.Status)
			if order.Done() {
				return nil
			}
		case <-quit:
			return nil
		}
	}
}

func pageArgs(args []string) (page, limit int) {
	page, limit = 1, 10
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			page = v
		}
	}
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			limit = v
		}
	}
	return page, limit
}

func printUsers(users []model.User) {
	for _, u := range users {
		fmt.Printf("%s  %-16s %-8s verified=%v balance=%.2f\n",
			u.ID, u.Username, u.Role, u.IsVerified, u.Balance)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bundlehub <command> [args]

auth:      login, register, logout, whoami
catalog:   products, product-add
cart:      cart, cart-add, local-add, cart-remove, cart-remove-line, cart-clear, checkout
orders:    buy, orders, order, watch
admin:     agents, agents-unverified, verify-agent, wallet-load, totals, admin-orders
payments:  pay-init, callback`)
}
