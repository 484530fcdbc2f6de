package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/api/server"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/audit"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/auth"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/monitor"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/scan"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
)

func main() {
	godotenv.Load("monitor.env")

	// Log to file as well as stdout
	logFile, err := os.OpenFile("logs/monitord.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	fmt.Println("🚀 Starting elderly monitoring node")

	// === Config ===
	dbPath := os.Getenv("MONITOR_DB_PATH")
	if dbPath == "" {
		dbPath = "./monitor_db"
	}
	apiListenAddr := ":8080"
	if port := os.Getenv("SERVER_PORT"); port != "" {
		apiListenAddr = ":" + port
	}

	// === Storage ===
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer store.Close()

	state := ledger.NewState(store)

	// === Startup Integrity Scan ===
	report, err := scan.ScanLedger(state)
	if err != nil {
		log.Fatalf("❌ Ledger scan failed: %v", err)
	}
	scan.PrintReport(report)

	// === Oracle Wiring ===
	endpoint := os.Getenv("ORACLE_ENDPOINT")
	if endpoint == "" {
		log.Fatalf("❌ ORACLE_ENDPOINT is not set")
	}
	gateway := oracle.NewHTTPGateway(endpoint)
	verifier, err := oracle.VerifierFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load oracle verification key: %v", err)
	}
	fmt.Printf("[KEY] Oracle verification key: %x\n", verifier.PublicKey)

	// === Caregiver Authorization ===
	allowlistPath := os.Getenv("CAREGIVER_ALLOWLIST_PATH")
	if allowlistPath == "" {
		allowlistPath = "caregivers.json"
	}
	allowlist, err := auth.NewAllowlistPolicy(allowlistPath)
	if err != nil {
		log.Fatalf("❌ Failed to load caregiver allowlist: %v", err)
	}

	// === Caregiver Allowlist Logging ===
	func() {
		data, err := os.ReadFile(allowlistPath)
		if err != nil {
			fmt.Printf("[Caregiver Allowlist] Failed to open %s: %v\n", allowlistPath, err)
			return
		}
		var caregivers map[string]struct {
			Authorized bool   `json:"authorized"`
			Name       string `json:"name"`
		}
		if err := json.Unmarshal(data, &caregivers); err != nil {
			fmt.Printf("[Caregiver Allowlist] Failed to parse %s: %v\n", allowlistPath, err)
			return
		}
		fmt.Println("[Caregiver Allowlist] Loaded caregivers at startup:")
		for id, info := range caregivers {
			fmt.Printf("  - %s: authorized=%v, name=%s\n", id, info.Authorized, info.Name)
		}
	}()

	keyPath := os.Getenv("CAREGIVER_PUBKEY_PATH")
	if keyPath == "" {
		keyPath = "caregiver_public.pem"
	}
	caregiverKey, err := auth.LoadRSAPublicKey(keyPath)
	if err != nil {
		log.Fatalf("❌ Failed to load caregiver public key: %v", err)
	}
	capVerifier := &auth.CapabilityVerifier{
		KeyProvider: &auth.StaticKeyProvider{PublicKey: caregiverKey},
	}

	// === Audit ===
	auditLogger, err := audit.NewChainedFileLogger("logs/audit.log")
	if err != nil {
		log.Fatalf("❌ Failed to open audit log: %v", err)
	}
	defer auditLogger.Close()

	// === Monitor Service ===
	svc, err := monitor.NewService(monitor.Config{
		State:    state,
		Gateway:  gateway,
		Verifier: verifier,
		Policy:   allowlist,
		Audit:    auditLogger,
		Sinks:    []notify.Notifier{notify.LogNotifier{}},
	})
	if err != nil {
		log.Fatalf("❌ Failed to wire monitor service: %v", err)
	}

	// === API Server ===
	apiServer := server.NewServer(store, svc, capVerifier, allowlist, apiListenAddr)

	err = apiServer.Start()
	if err != nil {
		log.Fatalf("❌ Failed to start API server: %v", err)
	}

	// === Keep Alive ===
	select {}
}
