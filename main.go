package main

import (
	_ "github.com/anoixa/photo-share/docs"

	"github.com/anoixa/photo-share/cmd"
)

// @title                       Photo Share API
// @version                     1.0
// @description                 Albums, photo uploads, share links and cloud analysis.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cmd.Execute()
}
