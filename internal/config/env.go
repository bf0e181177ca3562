package config

// Environment variables used by the application
const (
	// Solana streaming rpc url - should be websockets url
	RPC_WS_URL_SOLANA = "RPC_WS_URL_SOLANA"
	// Ethereum streaming rpc url - should be websockets url
	RPC_WS_URL_ETHEREUM = "RPC_WS_URL_ETHEREUM"

	// Comma separated base58 addresses passed as logsSubscribe mentions.
	// Defaults to the reference token mints.
	SOLANA_WATCHED_ADDRESSES = "SOLANA_WATCHED_ADDRESSES"
	// Comma separated ERC20 contracts. Empty means an unfiltered logs
	// subscription.
	ETHEREUM_WATCHED_CONTRACTS = "ETHEREUM_WATCHED_CONTRACTS"

	// fixed or exponential. Default is fixed
	RECONNECT_STRATEGY = "RECONNECT_STRATEGY"
	// Fixed reconnect delay, or the first exponential delay. Default is 5s
	RECONNECT_DELAY = "RECONNECT_DELAY"
	// Upper bound of the exponential delay. Default is 1m
	RECONNECT_MAX_DELAY = "RECONNECT_MAX_DELAY"

	// Comma separated list of log, kafka, postgres. Default is log
	EVENT_SINKS = "EVENT_SINKS"
	// Comma separated kafka brokers, required by the kafka sink
	KAFKA_BROKERS = "KAFKA_BROKERS"
	// Default is transfer-events
	KAFKA_TOPIC = "KAFKA_TOPIC"
	// Required by the postgres sink
	POSTGRES_DSN = "POSTGRES_DSN"

	// debug, info, warn or error. Default is info
	LOG_LEVEL = "LOG_LEVEL"
	// text or json. Default is text
	LOG_FORMAT = "LOG_FORMAT"
)
