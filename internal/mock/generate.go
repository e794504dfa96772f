package mock

//go:generate mockgen -package mock -destination aliases.go -mock_names PageSet=MockPageSet github.com/buildbarn/bb-pagesim/internal/mock/aliases PageSet
//go:generate mockgen -package mock -destination clock.go github.com/buildbarn/bb-pagesim/pkg/clock Clock,Ticker
//go:generate mockgen -package mock -destination simulator.go github.com/buildbarn/bb-pagesim/pkg/simulator Runner,Comparer
//go:generate mockgen -package mock -destination util.go github.com/buildbarn/bb-pagesim/pkg/util ErrorLogger
