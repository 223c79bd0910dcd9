package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	devenv "txpipeline/dev/env"
	"txpipeline/lib/ledger"
)

func cmd(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fullCmd := name
	for _, a := range args {
		fullCmd += " "
		fullCmd += a
	}

	fmt.Printf("$ %s\n", fullCmd)
	err := cmd.Run()
	if err != nil {
		os.Exit(1)
	}
}

func CreateLocalStack() error {
	err := os.Chdir("dev/local_stack")
	if err != nil {
		return err
	}
	cmd("docker", "compose", "up", "-d")
	return os.Chdir("../..")
}

func writeStateFile(name, contents string) error {
	path, err := devenv.ResolvePath("<dev_state>/" + name)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("config already present at", path)
		return nil
	}
	fmt.Println("writing config to", path)
	return os.WriteFile(path, []byte(contents), 0600)
}

// WriteLocalStackConfigs points the integration tests at the services started
// by dev/local_stack.
func WriteLocalStackConfigs() error {
	err := writeStateFile("postgres.json5", `{
    dsn: "host=localhost port=5432 user=txpipeline password=txpipeline dbname=txpipeline sslmode=disable",
}
`)
	if err != nil {
		return err
	}
	return writeStateFile("s3.json5", `{
    bucket: "txpipeline",
    region: "us-east-1",
    endpoint: "http://localhost:9000",
    access_key_id: "txpipeline",
    secret_access_key: "txpipeline-secret",
}
`)
}

func CreateLedgerDB() error {
	path, err := devenv.ResolvePath("<dev_state>/ledger.db")
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(ledger.Schema)
	return err
}

func PrintConfigLocations() {
	slog.Info("integration tests read dev/.state/postgres.json5 and dev/.state/s3.json5 when present and start throwaway containers otherwise, set `ledger.file` to <dev_state>/ledger.db in txpipeline.json5 to record deploys.")
}
