package quota_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tube-pulse/infrastructure/quota"
)

func TestAccountant_Charge(t *testing.T) {
	acct := quota.NewAccountant()
	require.Equal(t, int64(0), acct.Total())

	acct.Charge(quota.CostChannelList, "channels.list")
	acct.Charge(quota.CostPlaylistList, "playlistItems.list")
	acct.Charge(quota.CostPlaylistList, "playlistItems.list")
	acct.Charge(quota.CostStatisticsList, "videos.list")

	assert.Equal(t, int64(4), acct.Total())
	byOp := acct.ByOperation()
	assert.Equal(t, int64(1), byOp["channels.list"])
	assert.Equal(t, int64(2), byOp["playlistItems.list"])
	assert.Equal(t, int64(1), byOp["videos.list"])
}

func TestAccountant_ByOperationReturnsCopy(t *testing.T) {
	acct := quota.NewAccountant()
	acct.Charge(1, "channels.list")

	byOp := acct.ByOperation()
	byOp["channels.list"] = 99

	assert.Equal(t, int64(1), acct.ByOperation()["channels.list"])
}

func TestAccountant_ConcurrentCharges(t *testing.T) {
	acct := quota.NewAccountant()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acct.Charge(quota.CostStatisticsList, "videos.list")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), acct.Total())
	assert.Equal(t, int64(50), acct.ByOperation()["videos.list"])
}
