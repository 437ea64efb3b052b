// Package report builds the read-only projections handed to exporters.
package report

import (
	"context"
	"errors"
	"sort"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/modules/contractupdate"
	"boqtracker/internal/pkg/money"
	"boqtracker/internal/repository"
)

type GroupBy string

const (
	ByStructure  GroupBy = "structure"
	BySystem     GroupBy = "system"
	BySubsection GroupBy = "subsection"
)

func (g GroupBy) key(item *domain.BOQItem) (string, bool) {
	switch g {
	case ByStructure:
		return item.Structure, true
	case BySystem:
		return item.System, true
	case BySubsection:
		return item.Subsection, true
	}
	return "", false
}

type ItemView struct {
	Item                 domain.BOQItem                `json:"item"`
	LatestContract       domain.LatestContractQuantity `json:"latest_contract"`
	ConcentrationSheetID *int64                        `json:"concentration_sheet_id,omitempty"`
}

// SheetTotals are the entry sums of one sheet priced at the item's price.
type SheetTotals struct {
	Quantities             domain.Rollup `json:"quantities"`
	TotalEstimate          float64       `json:"total_estimate"`
	TotalSubmitted         float64       `json:"total_submitted"`
	InternalTotal          float64       `json:"internal_total"`
	TotalApprovedByManager float64       `json:"total_approved_by_manager"`
}

type SheetBundle struct {
	Sheet          domain.ConcentrationSheet     `json:"sheet"`
	Entries        []domain.ConcentrationEntry   `json:"entries"`
	Totals         SheetTotals                   `json:"totals"`
	Item           domain.BOQItem                `json:"item"`
	LatestContract domain.LatestContractQuantity `json:"latest_contract"`
}

// GroupSummary sums the items sharing one grouping value.
// ContractUpdateSums is keyed by contract update id.
type GroupSummary struct {
	Key                    string            `json:"key"`
	ItemCount              int               `json:"item_count"`
	TotalContractSum       float64           `json:"total_contract_sum"`
	TotalEstimate          float64           `json:"total_estimate"`
	TotalSubmitted         float64           `json:"total_submitted"`
	InternalTotal          float64           `json:"internal_total"`
	TotalApprovedByManager float64           `json:"total_approved_by_manager"`
	ApprovedSignedTotal    float64           `json:"approved_signed_total"`
	ContractUpdateSums     map[int64]float64 `json:"contract_update_sums"`
}

type Summaries struct {
	GroupBy         GroupBy                         `json:"group_by"`
	ContractUpdates []domain.ContractQuantityUpdate `json:"contract_updates"`
	Groups          []GroupSummary                  `json:"groups"`
}

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

func (s *Service) ItemView(ctx context.Context, boqItemID int64) (*ItemView, error) {
	item, err := s.store.BOQItems.GetByID(ctx, boqItemID)
	if err != nil {
		return nil, err
	}
	latest, err := contractupdate.Latest(ctx, s.store, []domain.BOQItem{*item})
	if err != nil {
		return nil, err
	}

	view := &ItemView{Item: *item, LatestContract: latest[item.ID]}
	sheet, err := s.store.ConcentrationSheets.GetByBOQItemID(ctx, item.ID)
	switch {
	case err == nil:
		view.ConcentrationSheetID = &sheet.ID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return view, nil
}

func (s *Service) SheetBundle(ctx context.Context, sheetID int64) (*SheetBundle, error) {
	sheet, err := s.store.ConcentrationSheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ConcentrationEntries.ListBySheet(ctx, sheet.ID)
	if err != nil {
		return nil, err
	}
	item, err := s.store.BOQItems.GetByID(ctx, sheet.BOQItemID)
	if err != nil {
		return nil, err
	}
	latest, err := contractupdate.Latest(ctx, s.store, []domain.BOQItem{*item})
	if err != nil {
		return nil, err
	}

	r := aggregation.Rollup(entries)
	return &SheetBundle{
		Sheet:   *sheet,
		Entries: entries,
		Totals: SheetTotals{
			Quantities:             r,
			TotalEstimate:          money.Total(r.Estimated, item.Price),
			TotalSubmitted:         money.Total(r.Submitted, item.Price),
			InternalTotal:          money.Total(r.Internal, item.Price),
			TotalApprovedByManager: money.Total(r.ApprovedByManager, item.Price),
		},
		Item:           *item,
		LatestContract: latest[item.ID],
	}, nil
}

type groupAcc struct {
	count                                                     int
	contract, estimate, submitted, internal, approved, signed money.Accumulator
	updates                                                   map[int64]*money.Accumulator
}

// Summaries groups every item by g. For each contract update, an item
// without a row contributes its original contract sum.
func (s *Service) Summaries(ctx context.Context, g GroupBy) (*Summaries, error) {
	if _, ok := g.key(&domain.BOQItem{}); !ok {
		return nil, domain.Invalid("summary", g, "group by must be structure, system or subsection")
	}

	items, err := s.store.BOQItems.List(ctx, repository.BOQItemFilters{})
	if err != nil {
		return nil, err
	}
	updates, err := s.store.ContractUpdates.List(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.QuantityUpdates.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type pair struct{ update, item int64 }
	sums := make(map[pair]float64, len(rows))
	for _, r := range rows {
		sums[pair{r.ContractUpdateID, r.BOQItemID}] = r.UpdatedContractSum
	}

	groups := map[string]*groupAcc{}
	for i := range items {
		item := &items[i]
		key, _ := g.key(item)
		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{updates: make(map[int64]*money.Accumulator, len(updates))}
			for _, u := range updates {
				acc.updates[u.ID] = &money.Accumulator{}
			}
			groups[key] = acc
		}

		acc.count++
		acc.contract.Add(item.TotalContractSum)
		acc.estimate.Add(item.TotalEstimate)
		acc.submitted.Add(item.TotalSubmitted)
		acc.internal.Add(item.InternalTotal)
		acc.approved.Add(item.TotalApprovedByManager)
		acc.signed.Add(item.ApprovedSignedTotal)

		fallback := contractupdate.Fallback(item).Sum
		for _, u := range updates {
			sum, ok := sums[pair{u.ID, item.ID}]
			if !ok {
				sum = fallback
			}
			acc.updates[u.ID].Add(sum)
		}
	}

	out := &Summaries{GroupBy: g, ContractUpdates: updates, Groups: make([]GroupSummary, 0, len(groups))}
	for key, acc := range groups {
		gs := GroupSummary{
			Key:                    key,
			ItemCount:              acc.count,
			TotalContractSum:       acc.contract.Float64(),
			TotalEstimate:          acc.estimate.Float64(),
			TotalSubmitted:         acc.submitted.Float64(),
			InternalTotal:          acc.internal.Float64(),
			TotalApprovedByManager: acc.approved.Float64(),
			ApprovedSignedTotal:    acc.signed.Float64(),
			ContractUpdateSums:     make(map[int64]float64, len(acc.updates)),
		}
		for id, a := range acc.updates {
			gs.ContractUpdateSums[id] = a.Float64()
		}
		out.Groups = append(out.Groups, gs)
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Key < out.Groups[j].Key })
	return out, nil
}
