package climate

import (
	"database/sql"
	"net/http"

	"hawaii-climate/internal/config"
	"hawaii-climate/internal/db"
	"hawaii-climate/internal/modules/climate/controller"
	"hawaii-climate/internal/modules/climate/repository"
	"hawaii-climate/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, conn *sql.DB, dialect db.Dialect, cfg config.Config) error {
	anchor, err := service.ParseAnchorPolicy(cfg.TobsAnchor)
	if err != nil {
		return err
	}
	climateRepository := repository.NewRepository(conn, dialect)
	climateService := service.NewService(climateRepository, anchor)
	climateController := controller.NewClimateController(climateRepository, climateService, controller.Options{
		StrictDates: cfg.StrictDates,
	})
	climateController.RegisterRoutes(mux)
	return nil
}
