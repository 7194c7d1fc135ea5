package serverconfig

import "Labyrinth/internal/maze/domain"

type Config struct {
	GameServer GameServerConfig `yaml:"gameserver" mapstructure:"gameserver"`
	GRPCServer GRPCServerConfig `yaml:"grpcserver" mapstructure:"grpcserver"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb" mapstructure:"mongodb"`
	SQLite     SQLiteConfig     `yaml:"sqlite" mapstructure:"sqlite"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	JWTSecret  string           `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	Game       domain.Rules     `yaml:"game" mapstructure:"game"`
}

type GameServerConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	NeedSecret   bool   `yaml:"need_secret" mapstructure:"need_secret"`
	AskTimeoutMs int    `yaml:"ask_timeout_ms" mapstructure:"ask_timeout_ms"`
	// FlushIntervalMs 房间快照落库间隔
	FlushIntervalMs int `yaml:"flush_interval_ms" mapstructure:"flush_interval_ms"`
	// RoomIdleSec 已结束房间空闲多久后释放，之后只能从归档读取
	RoomIdleSec int `yaml:"room_idle_sec" mapstructure:"room_idle_sec"`
}

type GRPCServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

const (
	StorageMemory  = "memory"
	StorageMySQL   = "mysql"
	StorageMongoDB = "mongodb"
	StorageSQLite  = "sqlite"
)

type StorageConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory/mysql/mongodb/sqlite
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
	ShowSQL  bool   `yaml:"show_sql" mapstructure:"show_sql"`
}

type MongoDBConfig struct {
	URI            string `yaml:"uri" mapstructure:"uri"`
	Database       string `yaml:"database" mapstructure:"database"`
	ConnectTimeout int    `yaml:"connect_timeout_ms" mapstructure:"connect_timeout_ms"`
	MaxPoolSize    uint64 `yaml:"max_pool_size" mapstructure:"max_pool_size"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // 文件路径；":memory:" 表示内存库
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}
