package database

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Configuration struct {
	Driver     string `validate:"required,oneof=postgres sqlite"`
	Username   string `validate:"required_if=Driver postgres"`
	Password   string `validate:"required_if=Driver postgres"`
	Database   string `validate:"required_if=Driver postgres"`
	Host       string `validate:"required_if=Driver postgres"`
	Port       uint   `validate:"required_if=Driver postgres"`
	SSLMode    string `yaml:"ssl-mode"`
	Path       string `validate:"required_if=Driver sqlite"`
	Migrations string `validate:"required"`
}
