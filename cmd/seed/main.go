package main

import (
	"context"
	"errors"
	"fmt"

	"boqtracker/internal/config"
	"boqtracker/internal/database"
	"boqtracker/internal/domain"
	"boqtracker/internal/middleware"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/modules/boq"
	"boqtracker/internal/modules/calculation"
	"boqtracker/internal/modules/concentration"
	"boqtracker/internal/modules/projectinfo"
	"boqtracker/internal/pkg/excelimport"
	jwtsvc "boqtracker/internal/pkg/jwt"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/repository"
)

func str(s string) *string { return &s }

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseURL, database.Options{Silent: true})
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	engine := aggregation.NewEngine(store, log)
	conc := concentration.NewService(store, engine, log)
	calc := calculation.NewService(store, excelimport.NewDecoder(), conc, log)

	if _, err := projectinfo.NewService(store, log).Update(ctx, projectinfo.UpdateRequest{
		ProjectName:            str("Riverside Residences"),
		ContractorInChargeName: str("North Build Ltd"),
		ContractNo:             str("RR-2024-017"),
		DeveloperName:          str("Riverside Development"),
	}); err != nil {
		log.Fatal("project info seed failed", "error", err)
	}

	imported := boq.NewService(store, log).Import(ctx, []boq.CreateRequest{
		{SectionNumber: "01.01", Description: "Excavation", Unit: "m3", Price: 18.5, OriginalContractQuantity: 1200, Structure: "Tower A", System: "Earthworks", Subsection: "Substructure"},
		{SectionNumber: "01.02", Description: "Blinding concrete", Unit: "m3", Price: 95, OriginalContractQuantity: 80, Structure: "Tower A", System: "Concrete", Subsection: "Substructure"},
		{SectionNumber: "02.01", Description: "Raft foundation C40", Unit: "m3", Price: 140, OriginalContractQuantity: 650, Structure: "Tower A", System: "Concrete", Subsection: "Foundations"},
		{SectionNumber: "02.02", Description: "Rebar B500", Unit: "t", Price: 910, OriginalContractQuantity: 95, Structure: "Tower A", System: "Reinforcement", Subsection: "Foundations"},
		{SectionNumber: "03.01", Description: "Podium slab C35", Unit: "m3", Price: 132, OriginalContractQuantity: 420, Structure: "Podium", System: "Concrete", Subsection: "Superstructure"},
	})
	log.Info("boq items seeded", "created", imported.Created, "failed", imported.Failed)

	ensured, err := conc.EnsureAllSheets(ctx)
	if err != nil {
		log.Fatal("concentration sheets seed failed", "error", err)
	}
	log.Info("concentration sheets seeded", "created", ensured.Created, "existing", ensured.Existing)

	sheet, err := calc.CreateSheet(ctx, calculation.CreateSheetRequest{
		CalculationSheetNo: "CS-001",
		DrawingNo:          "S-101",
		Description:        "Tower A foundations",
		Entries: []calculation.EntryRequest{
			{SectionNumber: "01.01", EstimatedQuantity: 1150, QuantitySubmitted: 1100},
			{SectionNumber: "02.01", EstimatedQuantity: 610, QuantitySubmitted: 600},
			{SectionNumber: "02.02", EstimatedQuantity: 88},
		},
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Info("calculation sheet already seeded", "calculation_sheet_no", "CS-001")
	case err != nil:
		log.Fatal("calculation sheet seed failed", "error", err)
	default:
		res, err := conc.PopulateFromCalculationSheet(ctx, sheet.Sheet.ID)
		if err != nil {
			log.Fatal("populate failed", "error", err)
		}
		log.Info("calculation sheet populated", "created", res.Created, "skipped", res.Skipped)
	}

	if cfg.AuthEnabled() {
		issuer := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
		for i, role := range []string{middleware.RoleEditor, middleware.RoleAdmin} {
			token, err := issuer.GenerateToken(int64(i+1), role)
			if err != nil {
				log.Fatal("token generation failed", "role", role, "error", err)
			}
			fmt.Printf("%s token: %s\n", role, token)
		}
	}
}
