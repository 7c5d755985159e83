package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	HTTPPort string `mapstructure:"PORT"`

	// Extensiv API configuration
	ExtBaseURL      string `mapstructure:"EXT_BASE_URL"`
	ExtClientID     string `mapstructure:"EXT_CLIENT_ID"`
	ExtClientSecret string `mapstructure:"EXT_CLIENT_SECRET"`
	ExtTplGUID      string `mapstructure:"EXT_TPL_GUID"`
	ExtUserLogin    string `mapstructure:"EXT_USER_LOGIN"`
	ExtUserLoginID  string `mapstructure:"EXT_USER_LOGIN_ID"`
	ExtWarehouseID  string `mapstructure:"EXT_WAREHOUSE_ID"`
	ExtCustomerID   string `mapstructure:"EXT_CUSTOMER_ID"`

	// Allocation engine
	AllocIterationCap int `mapstructure:"ALLOC_ITERATION_CAP"`

	// Portal auth
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	PortalUsers string `mapstructure:"PORTAL_USERS"`

	// SFTP order file drop
	SFTPHost       string `mapstructure:"SFTP_HOST"`
	SFTPPort       string `mapstructure:"SFTP_PORT"`
	SFTPUser       string `mapstructure:"SFTP_USER"`
	SFTPPassword   string `mapstructure:"SFTP_PASSWORD"`
	OrderFilePath  string `mapstructure:"ORDER_FILE_PATH"`
	OrderFileLocal string `mapstructure:"ORDER_FILE_LOCAL"`

	// Reporting
	ReportOutputDir string `mapstructure:"REPORT_OUTPUT_DIR"`
}

func Load() (config Config, err error) {
	viper.AutomaticEnv()

	viper.SetDefault("APP_NAME", "wms-alloc")
	viper.SetDefault("PORT", "3030")

	viper.SetDefault("EXT_BASE_URL", "https://box.secure-wms.com")
	viper.SetDefault("EXT_CLIENT_ID", "")
	viper.SetDefault("EXT_CLIENT_SECRET", "")
	viper.SetDefault("EXT_TPL_GUID", "")
	viper.SetDefault("EXT_USER_LOGIN", "")
	viper.SetDefault("EXT_USER_LOGIN_ID", "")
	viper.SetDefault("EXT_WAREHOUSE_ID", "")
	viper.SetDefault("EXT_CUSTOMER_ID", "")

	viper.SetDefault("ALLOC_ITERATION_CAP", 20000)

	viper.SetDefault("JWT_SECRET", "dev_secret")
	viper.SetDefault("PORTAL_USERS", "")

	viper.SetDefault("SFTP_HOST", "")
	viper.SetDefault("SFTP_PORT", "22")
	viper.SetDefault("SFTP_USER", "")
	viper.SetDefault("SFTP_PASSWORD", "")
	viper.SetDefault("ORDER_FILE_PATH", "/orderdrops")
	viper.SetDefault("ORDER_FILE_LOCAL", "./Uploaded940s")

	viper.SetDefault("REPORT_OUTPUT_DIR", "./reports")

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	config.ExtBaseURL = strings.TrimRight(config.ExtBaseURL, "/")

	return
}
