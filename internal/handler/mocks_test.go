package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

type mockRentals struct{ mock.Mock }

func rentalOrNil(args mock.Arguments) (*model.Rental, error) {
	r, _ := args.Get(0).(*model.Rental)
	return r, args.Error(1)
}

func (m *mockRentals) Open(ctx context.Context, customerID, movieID uint64) (*model.Rental, error) {
	return rentalOrNil(m.Called(ctx, customerID, movieID))
}
func (m *mockRentals) Close(ctx context.Context, id uint64) (*model.Rental, error) {
	return rentalOrNil(m.Called(ctx, id))
}
func (m *mockRentals) Delete(ctx context.Context, id uint64) (*model.Rental, error) {
	return rentalOrNil(m.Called(ctx, id))
}
func (m *mockRentals) AmendCustomer(ctx context.Context, id uint64, c model.CustomerSnapshot) (*model.Rental, error) {
	return rentalOrNil(m.Called(ctx, id, c))
}
func (m *mockRentals) Get(ctx context.Context, id uint64) (*model.Rental, error) {
	return rentalOrNil(m.Called(ctx, id))
}
func (m *mockRentals) List(ctx context.Context) ([]model.Rental, error) {
	args := m.Called(ctx)
	rs, _ := args.Get(0).([]model.Rental)
	return rs, args.Error(1)
}

type mockMovies struct{ mock.Mock }

func movieOrNil(args mock.Arguments) (*model.Movie, error) {
	mv, _ := args.Get(0).(*model.Movie)
	return mv, args.Error(1)
}

func (m *mockMovies) Create(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}
func (m *mockMovies) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return movieOrNil(m.Called(ctx, id))
}
func (m *mockMovies) List(ctx context.Context) ([]model.Movie, error) {
	args := m.Called(ctx)
	ms, _ := args.Get(0).([]model.Movie)
	return ms, args.Error(1)
}
func (m *mockMovies) Update(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}
func (m *mockMovies) SetLiked(ctx context.Context, id uint64, liked bool) (*model.Movie, error) {
	return movieOrNil(m.Called(ctx, id, liked))
}
func (m *mockMovies) Delete(ctx context.Context, id uint64) (*model.Movie, error) {
	return movieOrNil(m.Called(ctx, id))
}
func (m *mockMovies) Search(ctx context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error) {
	args := m.Called(ctx, q)
	ms, _ := args.Get(0).([]model.Movie)
	return ms, args.Get(1).(int64), args.Error(2)
}

type mockGenres struct{ mock.Mock }

func genreOrNil(args mock.Arguments) (*model.Genre, error) {
	g, _ := args.Get(0).(*model.Genre)
	return g, args.Error(1)
}

func (m *mockGenres) Create(ctx context.Context, g *model.Genre) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockGenres) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	return genreOrNil(m.Called(ctx, id))
}
func (m *mockGenres) List(ctx context.Context) ([]model.Genre, error) {
	args := m.Called(ctx)
	gs, _ := args.Get(0).([]model.Genre)
	return gs, args.Error(1)
}
func (m *mockGenres) Update(ctx context.Context, g *model.Genre) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockGenres) Delete(ctx context.Context, id uint64) (*model.Genre, error) {
	return genreOrNil(m.Called(ctx, id))
}

type mockCustomers struct{ mock.Mock }

func customerOrNil(args mock.Arguments) (*model.Customer, error) {
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *mockCustomers) Create(ctx context.Context, c *model.Customer) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCustomers) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	return customerOrNil(m.Called(ctx, id))
}
func (m *mockCustomers) List(ctx context.Context) ([]model.Customer, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Customer)
	return cs, args.Error(1)
}
func (m *mockCustomers) Update(ctx context.Context, c *model.Customer) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCustomers) Delete(ctx context.Context, id uint64) (*model.Customer, error) {
	return customerOrNil(m.Called(ctx, id))
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, name, email, password string, isAdmin bool, cost int) (uint64, error) {
	args := m.Called(ctx, name, email, password, isAdmin, cost)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *mockUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockUsers) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}
func (m *mockUsers) Update(ctx context.Context, id uint64, upd repository.UserUpdate, cost int) (model.User, error) {
	args := m.Called(ctx, id, upd, cost)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockUsers) Delete(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return m.Called(ctx, userID, tokenHash, exp).Error(0)
}
func (m *mockTokens) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *mockTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}
func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}
