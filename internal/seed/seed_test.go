package seed

import (
	"context"
	"testing"

	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/smallbiznis/sairex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoTenantIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t,
		&tenantdomain.Organization{},
		&tenantdomain.Campus{},
		&tenantdomain.Student{},
		&feeruledomain.FeeHead{},
		&feeruledomain.FeeStructure{},
		&ledgerdomain.LedgerAccount{},
	)
	node := testutil.NewNode(t)
	ctx := context.Background()

	first, err := EnsureDemoTenant(ctx, db, node)
	require.NoError(t, err)
	assert.Equal(t, DemoOrgCode, first.Organization.OrgCode)
	assert.Equal(t, "islamabad-main", first.Campus.CampusSlug)
	assert.Equal(t, first.Organization.ID, first.Campus.OrgID)
	assert.Equal(t, first.Campus.OrgID, first.Student.OrgID)
	assert.Equal(t, "Zain Sheikh", first.Student.FullName)
	assert.Equal(t, "5000", first.Structure.Amount.String())
	assert.Equal(t, feeruledomain.FrequencyMonthly, first.Structure.Frequency)

	second, err := EnsureDemoTenant(ctx, db, node)
	require.NoError(t, err)
	assert.Equal(t, first.Organization.ID, second.Organization.ID)
	assert.Equal(t, first.Structure.ID, second.Structure.ID)
	assert.Equal(t, first.Student.ID, second.Student.ID)

	var orgs, structures, accounts int64
	require.NoError(t, db.Model(&tenantdomain.Organization{}).Count(&orgs).Error)
	require.NoError(t, db.Model(&feeruledomain.FeeStructure{}).Count(&structures).Error)
	require.NoError(t, db.Model(&ledgerdomain.LedgerAccount{}).Count(&accounts).Error)
	assert.EqualValues(t, 1, orgs)
	assert.EqualValues(t, 1, structures)
	assert.EqualValues(t, 3, accounts)
}

func TestEnsureDemoTenantRequiresHandles(t *testing.T) {
	_, err := EnsureDemoTenant(context.Background(), nil, nil)
	assert.Error(t, err)
}
