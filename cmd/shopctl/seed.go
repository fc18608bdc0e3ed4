package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"repairpos/internal/infra"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the fixture format loaded by `shopctl seed`.
type SeedFile struct {
	Users     []SeedUser     `yaml:"users"`
	Customers []SeedCustomer `yaml:"customers"`
	Products  []SeedProduct  `yaml:"products"`
}

type SeedUser struct {
	Username  string `yaml:"username"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type SeedCustomer struct {
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email,omitempty"`
	Address string `yaml:"address,omitempty"`
}

type SeedProduct struct {
	Name  string `yaml:"name"`
	SKU   string `yaml:"sku"`
	Price string `yaml:"price"`
	Stock int    `yaml:"stock"`
}

// SeedResult counts rows created; existing rows are left untouched.
type SeedResult struct {
	Users, Customers, Products int
}

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load users, customers and products from a YAML fixture",
		Long: `Load fixtures into the database. Rows are matched by username,
customer phone and product SKU, so running the same file twice is a no-op.

Example:
  shopctl seed --migrate testdata/seed.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			db, _, err := opts.database()
			if err != nil {
				return err
			}
			if migrate {
				if err := infra.RunMigrations(db); err != nil {
					return err
				}
			}
			res, err := ApplySeed(cmd.Context(), db, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d users, %d customers, %d products\n",
				res.Users, res.Customers, res.Products)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations before seeding")
	return cmd
}

// LoadSeedFile reads and validates a fixture file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *SeedFile) validate() error {
	var errs []error
	for i, u := range s.Users {
		if strings.TrimSpace(u.Username) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: username is required", i))
		}
	}
	for i, c := range s.Customers {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
			errs = append(errs, fmt.Errorf("customers[%d]: name and phone are required", i))
		}
	}
	for i, p := range s.Products {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.SKU) == "" {
			errs = append(errs, fmt.Errorf("products[%d]: name and sku are required", i))
		}
		if price, err := decimal.NewFromString(p.Price); err != nil || price.IsNegative() {
			errs = append(errs, fmt.Errorf("products[%d]: price %q is not a non-negative amount", i, p.Price))
		}
		if p.Stock < 0 {
			errs = append(errs, fmt.Errorf("products[%d]: stock must not be negative", i))
		}
	}
	return errors.Join(errs...)
}

// ApplySeed inserts every fixture that does not exist yet.
func ApplySeed(ctx context.Context, db *gorm.DB, seed *SeedFile) (SeedResult, error) {
	var res SeedResult
	users := repository.NewUserRepository(db)
	customers := repository.NewCustomerRepository(db)
	products := repository.NewProductRepository(db)

	for _, u := range seed.Users {
		_, err := users.FindByUsername(ctx, u.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, err
		}
		role := u.Role
		if role == "" {
			role = "technician"
		}
		if err := users.Create(ctx, &model.User{
			Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Role: role,
		}); err != nil {
			return res, fmt.Errorf("creating user %s: %w", u.Username, err)
		}
		res.Users++
	}

	for _, c := range seed.Customers {
		_, err := customers.FindByPhone(ctx, c.Phone)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, err
		}
		row := &model.Customer{Name: c.Name, Phone: strPtr(c.Phone)}
		if c.Email != "" {
			row.Email = strPtr(c.Email)
		}
		if c.Address != "" {
			row.Address = strPtr(c.Address)
		}
		if err := customers.Create(ctx, row); err != nil {
			return res, fmt.Errorf("creating customer %s: %w", c.Name, err)
		}
		res.Customers++
	}

	for _, p := range seed.Products {
		_, err := products.FindBySKU(ctx, p.SKU)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, err
		}
		if err := products.Create(ctx, &model.Product{
			Name:          p.Name,
			SKU:           strPtr(p.SKU),
			Price:         decimal.RequireFromString(p.Price).Round(2),
			StockQuantity: p.Stock,
		}); err != nil {
			return res, fmt.Errorf("creating product %s: %w", p.SKU, err)
		}
		res.Products++
	}
	return res, nil
}

func strPtr(s string) *string { return &s }
