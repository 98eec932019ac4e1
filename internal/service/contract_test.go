package service

import (
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/testutil"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ContractServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ContractService
}

func TestContractService(t *testing.T) {
	suite.Run(t, new(ContractServiceSuite))
}

func (s *ContractServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewContractService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *ContractServiceSuite) TestCreateContract() {
	ctx := s.GetContext()
	c := createTestCustomer(ctx, s.GetStores().CustomerRepo)

	resp, err := s.service.CreateContract(ctx, dto.CreateContractRequest{
		CustomerID: c.ID,
		Title:      "Aggregate supply 2024",
		StartDate:  lo.ToPtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:    lo.ToPtr(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
		Value:      numPtr("125000"),
	})
	s.Require().NoError(err)
	s.Equal(types.ContractStatusActive, resp.Status)

	got, err := s.service.GetContract(ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal("Aggregate supply 2024", got.Title)
}

func (s *ContractServiceSuite) TestCreateContract_Invalid() {
	ctx := s.GetContext()

	_, err := s.service.CreateContract(ctx, dto.CreateContractRequest{CustomerID: "cust_missing", Title: "x"})
	s.True(ierr.IsNotFound(err))

	c := createTestCustomer(ctx, s.GetStores().CustomerRepo)
	_, err = s.service.CreateContract(ctx, dto.CreateContractRequest{
		CustomerID: c.ID,
		Title:      "Backwards",
		StartDate:  lo.ToPtr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:    lo.ToPtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateContract(ctx, dto.CreateContractRequest{CustomerID: c.ID})
	s.True(ierr.IsValidation(err))
}

func (s *ContractServiceSuite) TestUpdateContractStatus() {
	ctx := s.GetContext()
	c := createTestCustomer(ctx, s.GetStores().CustomerRepo)
	created, err := s.service.CreateContract(ctx, dto.CreateContractRequest{CustomerID: c.ID, Title: "Haulage"})
	s.Require().NoError(err)

	resp, err := s.service.UpdateContractStatus(ctx, created.ID, dto.UpdateContractStatusRequest{
		Status: types.ContractStatusCancelled,
	})
	s.Require().NoError(err)
	s.Equal(types.ContractStatusCancelled, resp.Status)
	s.Len(s.GetPublisher().EventsNamed(types.EventContractUpdated), 1)

	// same status again is a no-op
	_, err = s.service.UpdateContractStatus(ctx, created.ID, dto.UpdateContractStatusRequest{
		Status: types.ContractStatusCancelled,
	})
	s.Require().NoError(err)
	s.Len(s.GetPublisher().EventsNamed(types.EventContractUpdated), 1)

	_, err = s.service.UpdateContractStatus(ctx, created.ID, dto.UpdateContractStatusRequest{Status: "archived"})
	s.True(ierr.IsValidation(err))
}

func (s *ContractServiceSuite) TestListContracts() {
	ctx := s.GetContext()
	c := createTestCustomer(ctx, s.GetStores().CustomerRepo)
	for _, title := range []string{"A", "B", "C"} {
		_, err := s.service.CreateContract(ctx, dto.CreateContractRequest{CustomerID: c.ID, Title: title})
		s.Require().NoError(err)
	}

	filter := types.NewContractFilter()
	filter.Limit = lo.ToPtr(2)
	resp, err := s.service.ListContracts(ctx, filter)
	s.Require().NoError(err)
	s.Equal(3, resp.Pagination.Total)
	s.Len(resp.Items, 2)

	filter = types.NewContractFilter()
	filter.Status = types.ContractStatusCompleted
	resp, err = s.service.ListContracts(ctx, filter)
	s.Require().NoError(err)
	s.Empty(resp.Items)
}
