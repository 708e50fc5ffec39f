// Command orderloader imports an orders CSV (order_id,email,status) into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
	"github.com/zhouzirui/chatdesk/backend/internal/store/sqlstore"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	file := flag.String("file", "orders.csv", "CSV 文件路径，表头需包含 order_id,email,status")
	timeout := flag.Duration("timeout", time.Minute, "导入超时时间")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if cfg.Store.Driver == config.DriverMemory {
		log.Fatalf("STORE_DRIVER=%s 不会持久化，请改用 sqlite 或 mysql", cfg.Store.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := run(ctx, cfg.Store, *file)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Printf("已导入 %d 条订单 (%s -> %s)", n, *file, cfg.Store.Driver)
}

func run(ctx context.Context, storeCfg config.StoreConfig, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	items, err := order.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	db, err := sqlstore.Open(storeCfg.Driver, storeCfg.DSN)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return 0, err
	}
	if err := db.Orders().Upsert(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
