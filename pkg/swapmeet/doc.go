// Package swapmeet provides an embedded Go client for the swapmeet
// barter marketplace backed by Redis. It wires the marketplace
// services in-process, so bots, importers, and batch jobs can work
// against the same store as the HTTP API without going through it.
//
//	client, _ := swapmeet.New(ctx,
//	    swapmeet.WithRedis("localhost:6379", ""),
//	    swapmeet.WithWord2Vec("models/vectors.bin"),
//	)
//	defer client.Close()
//
//	offer, _ := client.Offers().Post(ctx, swapmeet.Offer{
//	    UserID:   "u1",
//	    Product:  "desk lamp",
//	    Category: "home",
//	})
//	ranked, _ := client.Rank(ctx, swapmeet.Query{Product: "lamp"})
package swapmeet
