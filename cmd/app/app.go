package main

import "github.com/DRSN-tech/shop-backend/internal/app"

func main() {
	app.Run()
}
