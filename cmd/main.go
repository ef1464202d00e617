package main

import (
	"github.com/corray333/shopline/notify/internal/app"
	"github.com/corray333/shopline/notify/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
