package main

import (
	"fmt"
	"os"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/workers/daemons"
)

func CreateWorker(id string) daemons.Worker {
	switch id {
	case "cron_job":
		return daemons.NewCronJob()
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start ledger-daemon: " + id)
		worker := CreateWorker(id)

		worker.Start()
	}
}
