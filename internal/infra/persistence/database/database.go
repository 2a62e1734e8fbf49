/*
 * @Description: 数据库连接管理 (支持多种数据库)
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-12-02 15:20:33
 * @LastEditors: 安知鱼
 */
package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xyhcode/tidecms/pkg/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGormDB 根据配置创建并返回一个 GORM 连接，现在支持多种数据库。
func NewGormDB(cfg *config.Config) (*gorm.DB, error) {
	driver := cfg.GetString(config.KeyDBType)
	if driver == "" {
		log.Println("提示: 配置文件中未指定 'Database.Type'，将默认使用 'postgres'")
		driver = "postgres"
	}

	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)

	var dialector gorm.Dialector
	switch driver {
	case "mysql", "mariadb":
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbUser, dbPass, dbHost, dbPort, dbName)
		dialector = mysql.Open(dsn)
	case "postgres":
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPass, dbName)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s (支持: mysql/mariadb, postgres)", driver)
	}

	gormCfg := &gorm.Config{}
	if cfg.GetBool(config.KeyDBDebug) {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
		log.Println("【数据库】Debug模式已开启，将打印所有执行的SQL语句。")
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败 (驱动: %s): %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接池失败: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 验证数据库连接
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close() // 如果 ping 失败，关闭连接以释放资源
		return nil, fmt.Errorf("无法 Ping 通数据库 (驱动: %s): %w", driver, err)
	}

	log.Printf("✅ %s 数据库连接池创建成功！\n", strings.Title(driver))
	return db, nil
}
