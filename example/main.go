package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/memstore"
	"github.com/meikuraledutech/timeline/normalize"
	"github.com/meikuraledutech/timeline/postgres"
)

const dagPayload = `{"entities": [{
	"entity": "dag_1420000000000_0001_1",
	"entitytype": "TEZ_DAG_ID",
	"starttime": 1420000001000,
	"primaryfilters": {"dagName": ["wordcount"], "user": ["alice"]},
	"otherinfo": {
		"applicationId": "application_1420000000000_0001",
		"startTime": 1420000001200,
		"endTime": 1420000009800,
		"status": "SUCCEEDED",
		"counters": {"counterGroups": [{
			"counterGroupName": "org.apache.tez.common.counters.DAGCounter",
			"counterGroupDisplayName": "DAGCounter",
			"counters": [
				{"counterName": "NUM_SUCCEEDED_TASKS", "counterDisplayName": "Succeeded tasks", "counterValue": 12},
				{"counterName": "TOTAL_LAUNCHED_TASKS", "counterDisplayName": "Launched tasks", "counterValue": 13}
			]
		}]}
	}
}]}`

const attemptPayload = `{"entities": [
	{
		"entity": "attempt_1420000000000_0001_1_00_000000_0",
		"primaryfilters": {
			"TEZ_DAG_ID": ["dag_1420000000000_0001_1"],
			"TEZ_VERTEX_ID": ["vertex_1420000000000_0001_1_00"],
			"TEZ_TASK_ID": ["task_1420000000000_0001_1_00_000000"]
		},
		"otherinfo": {
			"status": "SUCCEEDED",
			"inProgressLogsURL": "node-7.example:8042/node/containerlogs/container_1420000000000_0001_01_000002/alice"
		}
	},
	{
		"entity": "attempt_1420000000000_0001_1_00_000000_1",
		"otherinfo": {"inProgressLogsURL": "not-a-logs-url"}
	}
]}`

func main() {
	ctx := context.Background()

	// Postgres when DATABASE_URL is set, the in-memory store otherwise.
	var store timeline.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		s, err := memstore.New(1000)
		if err != nil {
			log.Fatalf("memstore: %v", err)
		}
		store = s
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	router := normalize.NewDefaultRouter()

	// ── Normalize a dag collection ────────────────────────────────────
	dags, err := router.Normalize([]byte(dagPayload), timeline.KindDag)
	if err != nil {
		log.Fatalf("normalize dags: %v", err)
	}
	fmt.Println("dags normalized")
	printJSON(dags)

	ingestID, err := store.SaveBatch(ctx, dags)
	if err != nil {
		log.Fatalf("save dags: %v", err)
	}
	fmt.Println("\ndags saved, ingest", ingestID)

	// ── Attempts: one good, one with an unparsable logs URL ───────────
	attempts, err := router.Normalize([]byte(attemptPayload), timeline.KindTaskAttempt)
	if err != nil {
		log.Fatalf("normalize attempts: %v", err)
	}
	fmt.Println("\nattempts normalized")
	printJSON(attempts)
	if err := attempts.Err(); err != nil {
		fmt.Println("skipped:", err)
	}

	if _, err := store.SaveBatch(ctx, attempts); err != nil {
		log.Fatalf("save attempts: %v", err)
	}

	// ── Lookups ───────────────────────────────────────────────────────
	dagRef := timeline.ParentRef{Kind: timeline.KindDag, ID: "dag_1420000000000_0001_1"}
	groups, err := store.ListCounterGroups(ctx, dagRef)
	if err != nil {
		log.Fatalf("list counter groups: %v", err)
	}
	fmt.Println("\ncounter groups of", dagRef)
	printJSON(groups)

	launched, err := timeline.CounterValue(ctx, store, dagRef,
		"org.apache.tez.common.counters.DAGCounter", "TOTAL_LAUNCHED_TASKS")
	if err != nil {
		log.Fatalf("counter value: %v", err)
	}
	fmt.Println("\nlaunched tasks:", launched)

	taskAttempts, err := store.ListTaskAttempts(ctx, "task_1420000000000_0001_1_00_000000")
	if err != nil {
		log.Fatalf("list attempts: %v", err)
	}
	fmt.Println("\nattempts of task_1420000000000_0001_1_00_000000")
	printJSON(taskAttempts)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DropSchema(ctx); err != nil {
		log.Fatalf("drop schema: %v", err)
	}
	fmt.Println("\nschema dropped")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
