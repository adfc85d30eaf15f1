package mocks

//go:generate mockgen -destination=./mock_exchange_private.go -package=mocks github.com/rxtech-lab/argo-meanrev/internal/trading/provider ExchangePrivateClient
//go:generate mockgen -destination=./mock_exchange_public.go -package=mocks github.com/rxtech-lab/argo-meanrev/internal/trading/provider ExchangePublicClient
//go:generate mockgen -destination=./mock_feed.go -package=mocks github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider Feed
