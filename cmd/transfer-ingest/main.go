package main

import "github.com/Mantelijo/transfer-ingest/internal/svc"

func main() {
	svc.RunTransferIngest()
}
