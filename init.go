package main

import "log"

func init() { // nolint:gochecknoinits
	log.SetFlags(log.LstdFlags | log.LUTC)
}
