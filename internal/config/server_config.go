package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github/chapool/chainsig-relay/internal/util"
)

const (
	DefaultPort = 3001

	DerivationModeLocal    = "local"
	DerivationModeContract = "contract"
)

type EchoServer struct {
	Debug                         bool
	ListenAddress                 string
	BodyLimit                     string
	ShutdownTimeout               time.Duration
	EnableCORSMiddleware          bool
	EnableLoggerMiddleware        bool
	EnableRecoverMiddleware       bool
	EnableRequestIDMiddleware     bool
	EnableTrailingSlashMiddleware bool
}

type ManagementServer struct {
	ProbeTimeout  time.Duration
	EnableMetrics bool
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	LogRequestHeader   bool
	LogResponseHeader  bool
	PrettyPrintConsole bool
}

// Near configures the NEAR account that submits sign requests and the MPC
// signer contract it talks to.
type Near struct {
	NetworkID      string
	RPCURL         string
	RPCTimeout     time.Duration
	AccountID      string
	PrivateKey     string `json:"-"`
	ContractID     string
	DerivationMode string
	KeyVersion     uint32
	SignGas        uint64
	SignDeposit    string
}

// EVM configures the chain the relay submits to and the transaction it sends.
type EVM struct {
	ChainID        int64
	RPCURLs        []string
	DerivationPath string
	ToAddress      string
	ValueWei       string
	Data           string
	GasLimit       uint64
	GasMultiplier  float64
}

type Server struct {
	Echo       EchoServer
	Management ManagementServer
	Logger     LoggerServer
	Near       Near
	EVM        EVM
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application.
func DefaultServiceConfigFromEnv() Server {
	DotEnvTryLoad(util.GetEnv("DOTENV_PATH", defaultDotEnvFile), os.Setenv)

	networkID := util.GetEnvEnum("NEAR_NETWORK_ID", "testnet", NearNetworkIDs())
	network, _ := LookupNearNetwork(networkID)

	chainID := util.GetEnvAsInt64("EVM_CHAIN_ID", 11155111)
	var defaultEVMRPCURLs []string
	if url, ok := DefaultEVMRPCURL(chainID); ok {
		defaultEVMRPCURLs = []string{url}
	}

	port := util.GetEnvAsInt("PORT", DefaultPort)

	return Server{
		Echo: EchoServer{
			Debug:                         util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress:                 ListenAddressForPort(port),
			BodyLimit:                     util.GetEnv("SERVER_ECHO_BODY_LIMIT", "1M"),
			ShutdownTimeout:               util.GetEnvAsDurationSeconds("SERVER_SHUTDOWN_TIMEOUT_SEC", 30*time.Second),
			EnableCORSMiddleware:          util.GetEnvAsBool("SERVER_ECHO_ENABLE_CORS_MIDDLEWARE", true),
			EnableLoggerMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableRecoverMiddleware:       util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestIDMiddleware:     util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableTrailingSlashMiddleware: util.GetEnvAsBool("SERVER_ECHO_ENABLE_TRAILING_SLASH_MIDDLEWARE", true),
		},
		Management: ManagementServer{
			ProbeTimeout:  util.GetEnvAsDurationSeconds("SERVER_MANAGEMENT_PROBE_TIMEOUT_SEC", 5*time.Second),
			EnableMetrics: util.GetEnvAsBool("SERVER_MANAGEMENT_ENABLE_METRICS", true),
		},
		Logger: LoggerServer{
			Level:              parseLogLevel(util.GetEnv("SERVER_LOGGER_LEVEL", zerolog.InfoLevel.String()), zerolog.InfoLevel),
			RequestLevel:       parseLogLevel(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", zerolog.DebugLevel.String()), zerolog.DebugLevel),
			LogRequestHeader:   util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_HEADER", false),
			LogResponseHeader:  util.GetEnvAsBool("SERVER_LOGGER_LOG_RESPONSE_HEADER", false),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Near: Near{
			NetworkID:      networkID,
			RPCURL:         util.GetEnv("NEAR_RPC_URL", network.RPCURL),
			RPCTimeout:     util.GetEnvAsDurationSeconds("NEAR_RPC_TIMEOUT_SEC", 120*time.Second),
			AccountID:      util.GetEnv("NEAR_ACCOUNT_ID", ""),
			PrivateKey:     util.GetEnv("NEAR_PRIVATE_KEY", ""),
			ContractID:     util.GetEnv("NEAR_MPC_CONTRACT_ID", network.MPCContractID),
			DerivationMode: util.GetEnvEnum("NEAR_MPC_DERIVATION", DerivationModeLocal, []string{DerivationModeLocal, DerivationModeContract}),
			KeyVersion:     util.GetEnvAsUint32("NEAR_MPC_KEY_VERSION", 0),
			SignGas:        util.GetEnvAsUint64("NEAR_SIGN_GAS", 250_000_000_000_000),
			SignDeposit:    util.GetEnv("NEAR_SIGN_DEPOSIT", "1"),
		},
		EVM: EVM{
			ChainID:        chainID,
			RPCURLs:        util.GetEnvAsStringArrTrimmed("EVM_RPC_URL", defaultEVMRPCURLs),
			DerivationPath: util.GetEnv("EVM_DERIVATION_PATH", "ethereum-1"),
			ToAddress:      util.GetEnv("EVM_TO_ADDRESS", ""),
			ValueWei:       util.GetEnv("EVM_VALUE_WEI", "0"),
			Data:           util.GetEnv("EVM_DATA", ""),
			GasLimit:       util.GetEnvAsUint64("EVM_GAS_LIMIT", 0),
			GasMultiplier:  util.GetEnvAsFloat64("EVM_GAS_MULTIPLIER", 1.2),
		},
	}
}

// ListenAddressForPort formats the address echo binds to.
func ListenAddressForPort(port int) string {
	return fmt.Sprintf(":%d", port)
}

func parseLogLevel(raw string, fallback zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return fallback
	}

	return level
}
