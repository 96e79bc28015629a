package main

import (
	"fmt"
	"os"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/routes"
	"github.com/nusabooks/ledger/services/taxcal_service"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := models.Migrate(config.DataBase); err != nil {
		config.Logger.Fatalf("migration failed: %v", err)
	}

	publisher, err := audit.Connect("config/amqp.yml")
	if err != nil {
		config.Logger.Fatalf("audit publisher failed: %v", err)
	}
	audit.Gateway = publisher

	if err := taxcal_service.LoadDefinitions("config/tax_deadlines.yml"); err != nil {
		config.Logger.Fatalf("tax deadline definitions failed: %v", err)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "3000"
	}

	r := routes.SetupRouter()
	r.Listen(":" + port)
}
