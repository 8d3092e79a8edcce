package services

import (
	"bytes"
	"context"
	"testing"

	"spacrm-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_CustomersXLSX(t *testing.T) {
	db := testutil.NewDB(t)
	customers := NewCustomerService(db, nil)
	ctx := context.Background()
	_, err := customers.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Hoa Tran", PhoneNumber: "0907000001", DateOfBirth: "1991-04-05", SkinType: "dry"})
	require.NoError(t, err)
	_, err = customers.CreateWalkIn(ctx, CreateCustomerInput{FullName: "Minh Le", PhoneNumber: "0907000002"})
	require.NoError(t, err)

	data, err := NewExportService(customers).CustomersXLSX(ctx, "hoa")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{customerSheet}, f.GetSheetList())
	rows, err := f.GetRows(customerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, customerExportHeader, rows[0])
	assert.Equal(t, "Hoa Tran", rows[1][1])
	assert.Equal(t, "0907000001", rows[1][2])
	assert.Equal(t, "1991-04-05", rows[1][3])
	assert.Equal(t, "walk_in", rows[1][7])
	assert.Equal(t, "Yes", rows[1][8])
}

func TestExportService_EmptyExportHasHeader(t *testing.T) {
	db := testutil.NewDB(t)
	data, err := NewExportService(NewCustomerService(db, nil)).CustomersXLSX(context.Background(), "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(customerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
