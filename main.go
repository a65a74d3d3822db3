package main

import (
	_ "github.com/nterray/discourse/src/migration"
	"github.com/nterray/discourse/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
