package common

import (
	"hash/fnv"

	"github.com/sony/sonyflake"
)

// NewIDWorker derives the sonyflake machine id from the service instance name,
// so hosts without a private address still get a worker.
func NewIDWorker() *sonyflake.Sonyflake {
	return sonyflake.NewSonyflake(sonyflake.Settings{MachineID: instanceMachineID})
}

func instanceMachineID() (uint16, error) {
	h := fnv.New32a()
	if _, err := h.Write([]byte(GetServiceInstance())); err != nil {
		return 0, err
	}
	return uint16(h.Sum32()), nil
}

// NextID panics when the sonyflake worker is exhausted or misconfigured.
func NextID(idWorker *sonyflake.Sonyflake) int64 {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return int64(id)
}

func HttpStatusIsSuccess(status int) bool {
	return status >= 200 && status < 300
}
