package rest_api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nuibits/userbase"
	"github.com/nuibits/userbase/common"
)

// SubmitPayload is the wire form of one transaction submission. The command
// tag is one of Insert, Update or Delete; record carries the opaque encrypted
// payload, base64 over JSON.
type SubmitPayload struct {
	ItemID  string `json:"item_id"`
	Command string `json:"cmd"`
	Record  []byte `json:"record,omitempty"`
}

// SubmitResult carries the sequence number assigned to a submission.
type SubmitResult struct {
	SequenceNo int64 `json:"seq_no"`
}

// httpStatus maps the engine's error taxonomy onto HTTP status codes.
func httpStatus(err error) int {
	switch userbase.CodeOf(err) {
	case userbase.BadInput:
		return http.StatusBadRequest
	case userbase.Unauthorized:
		return http.StatusUnauthorized
	case userbase.NotFound:
		return http.StatusNotFound
	case userbase.TransientFailure:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func toSubmitRequest(userID string, p SubmitPayload) (common.SubmitRequest, error) {
	cmd, err := userbase.ParseCommand(p.Command)
	if err != nil {
		return common.SubmitRequest{}, err
	}
	return common.SubmitRequest{
		UserID:  userID,
		ItemID:  p.ItemID,
		Command: cmd,
		Record:  p.Record,
	}, nil
}

// PostTransaction godoc
// @Summary PostTransaction appends one transaction to the user's log.
// @Schemes
// @Description PostTransaction appends the submitted command to the user's transaction log and responds with the assigned sequence number.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param userid path string true "ID of the log's user" minlength(1) maxlength(150)
// @Param payload body SubmitPayload true "Transaction to append"
// @Failure 400 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Success 200 {object} SubmitResult
// @Router /users/{userid}/transactions [post]
// @Security Bearer
func PostTransaction(c *gin.Context) {
	userID := c.Param("userid")

	var payload SubmitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("decoding transaction payload failed, error: %v", err)})
		return
	}
	req, err := toSubmitRequest(userID, payload)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}

	seq, err := service.Submit(c, req)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SubmitResult{SequenceNo: seq})
}

// PostTransactionBatch godoc
// @Summary PostTransactionBatch appends a batch of transactions to the user's log.
// @Schemes
// @Description PostTransactionBatch appends the submitted commands concurrently and responds with the assigned sequence numbers in input order. Writes are per-transaction atomic, not per-batch.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param userid path string true "ID of the log's user" minlength(1) maxlength(150)
// @Param payload body []SubmitPayload true "Transactions to append"
// @Failure 400 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Success 200 {object} []SubmitResult
// @Router /users/{userid}/transactionbatches [post]
// @Security Bearer
func PostTransactionBatch(c *gin.Context) {
	userID := c.Param("userid")

	var payloads []SubmitPayload
	if err := c.ShouldBindJSON(&payloads); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("decoding transaction batch payload failed, error: %v", err)})
		return
	}
	reqs := make([]common.SubmitRequest, len(payloads))
	for i, p := range payloads {
		req, err := toSubmitRequest(userID, p)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"message": err.Error()})
			return
		}
		reqs[i] = req
	}

	seqs, err := service.SubmitBatch(c, reqs)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	results := make([]SubmitResult, len(seqs))
	for i, s := range seqs {
		results[i] = SubmitResult{SequenceNo: s}
	}
	c.JSON(http.StatusOK, results)
}

// GetTransactions godoc
// @Summary GetTransactions returns the user's bundle watermark and committed log tail.
// @Schemes
// @Description GetTransactions responds with the user's current bundle sequence number and the committed transactions above it, as JSON.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param userid path string true "ID of the log's user" minlength(1) maxlength(150)
// @Failure 503 {object} map[string]any
// @Success 200 {object} common.TransactionLogTail
// @Router /users/{userid}/transactions [get]
// @Security Bearer
func GetTransactions(c *gin.Context) {
	userID := c.Param("userid")

	tail, err := service.QueryTransactionLog(c, userID)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tail)
}
