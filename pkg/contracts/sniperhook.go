package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// SniperHookABI is the ABI of the SniperHook venue contract
const SniperHookABI = `[
	{
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "tokenIn", "type": "address"},
					{"internalType": "address", "name": "tokenOut", "type": "address"},
					{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
					{"internalType": "uint256", "name": "targetPrice", "type": "uint256"},
					{"internalType": "uint16", "name": "maxSlippageBps", "type": "uint16"},
					{"internalType": "uint256", "name": "expiry", "type": "uint256"},
					{"internalType": "int24", "name": "targetTickHint", "type": "int24"}
				],
				"internalType": "struct SniperTypes.CreateIntentParams",
				"name": "params",
				"type": "tuple"
			}
		],
		"name": "createIntent",
		"outputs": [{"internalType": "uint256", "name": "intentId", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "intentId", "type": "uint256"}],
		"name": "getIntent",
		"outputs": [
			{
				"components": [
					{"internalType": "address", "name": "user", "type": "address"},
					{"internalType": "address", "name": "tokenIn", "type": "address"},
					{"internalType": "address", "name": "tokenOut", "type": "address"},
					{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
					{"internalType": "uint256", "name": "targetPrice", "type": "uint256"},
					{"internalType": "uint16", "name": "maxSlippageBps", "type": "uint16"},
					{"internalType": "uint256", "name": "expiry", "type": "uint256"},
					{"internalType": "uint256", "name": "nonce", "type": "uint256"},
					{"internalType": "int24", "name": "targetTick", "type": "int24"},
					{"internalType": "bool", "name": "executed", "type": "bool"},
					{"internalType": "bool", "name": "cancelled", "type": "bool"},
					{"internalType": "uint64", "name": "createdAt", "type": "uint64"}
				],
				"internalType": "struct SniperTypes.Intent",
				"name": "",
				"type": "tuple"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "nextIntentId",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "intentId", "type": "uint256"},
			{"internalType": "address", "name": "recipient", "type": "address"}
		],
		"name": "cancelIntent",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "intentId", "type": "uint256"},
			{"internalType": "address", "name": "recipient", "type": "address"}
		],
		"name": "refundIntent",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "uint256", "name": "intentId", "type": "uint256"},
			{"indexed": true, "internalType": "address", "name": "user", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "tokenIn", "type": "address"},
			{"indexed": false, "internalType": "address", "name": "tokenOut", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "targetPrice", "type": "uint256"},
			{"indexed": false, "internalType": "int24", "name": "targetTick", "type": "int24"},
			{"indexed": false, "internalType": "uint256", "name": "expiry", "type": "uint256"},
			{"indexed": false, "internalType": "uint16", "name": "maxSlippageBps", "type": "uint16"}
		],
		"name": "IntentCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "uint256", "name": "intentId", "type": "uint256"},
			{"indexed": true, "internalType": "address", "name": "beneficiary", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "oraclePrice", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "answeredAt", "type": "uint256"},
			{"indexed": false, "internalType": "bool", "name": "fastPath", "type": "bool"}
		],
		"name": "IntentExecuted",
		"type": "event"
	}
]`

// SniperTypesCreateIntentParams is an auto generated low-level Go binding around an user-defined struct.
type SniperTypesCreateIntentParams struct {
	TokenIn        common.Address
	TokenOut       common.Address
	AmountIn       *big.Int
	TargetPrice    *big.Int
	MaxSlippageBps uint16
	Expiry         *big.Int
	TargetTickHint *big.Int
}

// SniperTypesIntent is an auto generated low-level Go binding around an user-defined struct.
type SniperTypesIntent struct {
	User           common.Address
	TokenIn        common.Address
	TokenOut       common.Address
	AmountIn       *big.Int
	TargetPrice    *big.Int
	MaxSlippageBps uint16
	Expiry         *big.Int
	Nonce          *big.Int
	TargetTick     *big.Int
	Executed       bool
	Cancelled      bool
	CreatedAt      uint64
}

// SniperHook is an auto generated Go binding around an Ethereum contract.
type SniperHook struct {
	SniperHookCaller     // Read-only binding to the contract
	SniperHookTransactor // Write-only binding to the contract
	SniperHookFilterer   // Log filterer for contract events
}

// SniperHookCaller is an auto generated read-only Go binding around an Ethereum contract.
type SniperHookCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// SniperHookTransactor is an auto generated write-only Go binding around an Ethereum contract.
type SniperHookTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// SniperHookFilterer is an auto generated log filtering Go binding around an Ethereum contract events.
type SniperHookFilterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewSniperHook creates a new instance of SniperHook, bound to a specific deployed contract.
func NewSniperHook(address common.Address, backend bind.ContractBackend) (*SniperHook, error) {
	contract, err := bindSniperHook(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &SniperHook{
		SniperHookCaller:     SniperHookCaller{contract: contract},
		SniperHookTransactor: SniperHookTransactor{contract: contract},
		SniperHookFilterer:   SniperHookFilterer{contract: contract},
	}, nil
}

// bindSniperHook binds a generic wrapper to an already deployed contract.
func bindSniperHook(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(SniperHookABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, filterer), nil
}

// GetIntent is a free data retrieval call binding the contract method 0x2e1a047c.
//
// Solidity: function getIntent(uint256 intentId) view returns((address,address,address,uint256,uint256,uint16,uint256,uint256,int24,bool,bool,uint64))
func (_SniperHook *SniperHookCaller) GetIntent(opts *bind.CallOpts, intentId *big.Int) (SniperTypesIntent, error) {
	var out []interface{}
	err := _SniperHook.contract.Call(opts, &out, "getIntent", intentId)
	if err != nil {
		return *new(SniperTypesIntent), err
	}

	out0 := *abi.ConvertType(out[0], new(SniperTypesIntent)).(*SniperTypesIntent)

	return out0, err
}

// NextIntentId is a free data retrieval call binding the contract method 0x8a72ea6a.
//
// Solidity: function nextIntentId() view returns(uint256)
func (_SniperHook *SniperHookCaller) NextIntentId(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _SniperHook.contract.Call(opts, &out, "nextIntentId")
	if err != nil {
		return *new(*big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return out0, err
}

// CreateIntent is a paid mutator transaction binding the contract method 0x3f8f7f2d.
//
// Solidity: function createIntent((address,address,uint256,uint256,uint16,uint256,int24) params) returns(uint256 intentId)
func (_SniperHook *SniperHookTransactor) CreateIntent(opts *bind.TransactOpts, params SniperTypesCreateIntentParams) (*types.Transaction, error) {
	return _SniperHook.contract.Transact(opts, "createIntent", params)
}

// CancelIntent is a paid mutator transaction binding the contract method 0xd5c5b3e9.
//
// Solidity: function cancelIntent(uint256 intentId, address recipient) returns()
func (_SniperHook *SniperHookTransactor) CancelIntent(opts *bind.TransactOpts, intentId *big.Int, recipient common.Address) (*types.Transaction, error) {
	return _SniperHook.contract.Transact(opts, "cancelIntent", intentId, recipient)
}

// RefundIntent is a paid mutator transaction binding the contract method 0x7c3bc8a1.
//
// Solidity: function refundIntent(uint256 intentId, address recipient) returns()
func (_SniperHook *SniperHookTransactor) RefundIntent(opts *bind.TransactOpts, intentId *big.Int, recipient common.Address) (*types.Transaction, error) {
	return _SniperHook.contract.Transact(opts, "refundIntent", intentId, recipient)
}

// SniperHookIntentCreatedIterator is returned from FilterIntentCreated and is used to iterate over the raw logs and unpacked data for IntentCreated events raised by the SniperHook contract.
type SniperHookIntentCreatedIterator struct {
	Event *SniperHookIntentCreated // Event containing the contract specifics and raw log

	contract *bind.BoundContract // Generic contract to use for unpacking event data
	event    string              // Event name to use for unpacking event data

	logs chan types.Log        // Log channel receiving the found contract events
	sub  ethereum.Subscription // Subscription for errors, completion and termination
	done bool                  // Whether the subscription completed delivering logs
	fail error                 // Occurred error to stop iteration
}

// Next advances the iterator to the subsequent event, returning whether there
// are any more events found. In case of a retrieval or parsing error, false is
// returned and Error() can be queried for the exact failure.
func (it *SniperHookIntentCreatedIterator) Next() bool {
	// If the iterator failed, stop iterating
	if it.fail != nil {
		return false
	}
	// If the iterator completed, deliver directly whatever's available
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(SniperHookIntentCreated)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true

		default:
			return false
		}
	}
	// Iterator still in progress, wait for either a data or an error event
	select {
	case log := <-it.logs:
		it.Event = new(SniperHookIntentCreated)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true

	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error occurred during filtering.
func (it *SniperHookIntentCreatedIterator) Error() error {
	return it.fail
}

// Close terminates the iteration process, releasing any pending underlying
// resources.
func (it *SniperHookIntentCreatedIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// SniperHookIntentCreated represents a IntentCreated event raised by the SniperHook contract.
type SniperHookIntentCreated struct {
	IntentId       *big.Int
	User           common.Address
	TokenIn        common.Address
	TokenOut       common.Address
	AmountIn       *big.Int
	TargetPrice    *big.Int
	TargetTick     *big.Int
	Expiry         *big.Int
	MaxSlippageBps uint16
	Raw            types.Log // Blockchain specific contextual infos
}

// FilterIntentCreated is a free log retrieval operation binding the contract event 0x1c9d7a2e.
//
// Solidity: event IntentCreated(uint256 indexed intentId, address indexed user, address indexed tokenIn, address tokenOut, uint256 amountIn, uint256 targetPrice, int24 targetTick, uint256 expiry, uint16 maxSlippageBps)
func (_SniperHook *SniperHookFilterer) FilterIntentCreated(opts *bind.FilterOpts, intentId []*big.Int, user []common.Address, tokenIn []common.Address) (*SniperHookIntentCreatedIterator, error) {
	var intentIdRule []interface{}
	for _, intentIdItem := range intentId {
		intentIdRule = append(intentIdRule, intentIdItem)
	}
	var userRule []interface{}
	for _, userItem := range user {
		userRule = append(userRule, userItem)
	}
	var tokenInRule []interface{}
	for _, tokenInItem := range tokenIn {
		tokenInRule = append(tokenInRule, tokenInItem)
	}

	logs, sub, err := _SniperHook.contract.FilterLogs(opts, "IntentCreated", intentIdRule, userRule, tokenInRule)
	if err != nil {
		return nil, err
	}
	return &SniperHookIntentCreatedIterator{contract: _SniperHook.contract, event: "IntentCreated", logs: logs, sub: sub}, nil
}

// WatchIntentCreated is a free log subscription operation binding the contract event 0x1c9d7a2e.
//
// Solidity: event IntentCreated(uint256 indexed intentId, address indexed user, address indexed tokenIn, address tokenOut, uint256 amountIn, uint256 targetPrice, int24 targetTick, uint256 expiry, uint16 maxSlippageBps)
func (_SniperHook *SniperHookFilterer) WatchIntentCreated(opts *bind.WatchOpts, sink chan<- *SniperHookIntentCreated, intentId []*big.Int, user []common.Address, tokenIn []common.Address) (event.Subscription, error) {
	var intentIdRule []interface{}
	for _, intentIdItem := range intentId {
		intentIdRule = append(intentIdRule, intentIdItem)
	}
	var userRule []interface{}
	for _, userItem := range user {
		userRule = append(userRule, userItem)
	}
	var tokenInRule []interface{}
	for _, tokenInItem := range tokenIn {
		tokenInRule = append(tokenInRule, tokenInItem)
	}

	logs, sub, err := _SniperHook.contract.WatchLogs(opts, "IntentCreated", intentIdRule, userRule, tokenInRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				// New log arrived, parse the event and forward to the user
				event := new(SniperHookIntentCreated)
				if err := _SniperHook.contract.UnpackLog(event, "IntentCreated", log); err != nil {
					return err
				}
				event.Raw = log

				select {
				case sink <- event:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// ParseIntentCreated is a log parse operation binding the contract event 0x1c9d7a2e.
//
// Solidity: event IntentCreated(uint256 indexed intentId, address indexed user, address indexed tokenIn, address tokenOut, uint256 amountIn, uint256 targetPrice, int24 targetTick, uint256 expiry, uint16 maxSlippageBps)
func (_SniperHook *SniperHookFilterer) ParseIntentCreated(log types.Log) (*SniperHookIntentCreated, error) {
	event := new(SniperHookIntentCreated)
	if err := _SniperHook.contract.UnpackLog(event, "IntentCreated", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// SniperHookIntentExecutedIterator is returned from FilterIntentExecuted and is used to iterate over the raw logs and unpacked data for IntentExecuted events raised by the SniperHook contract.
type SniperHookIntentExecutedIterator struct {
	Event *SniperHookIntentExecuted // Event containing the contract specifics and raw log

	contract *bind.BoundContract // Generic contract to use for unpacking event data
	event    string              // Event name to use for unpacking event data

	logs chan types.Log        // Log channel receiving the found contract events
	sub  ethereum.Subscription // Subscription for errors, completion and termination
	done bool                  // Whether the subscription completed delivering logs
	fail error                 // Occurred error to stop iteration
}

// Next advances the iterator to the subsequent event, returning whether there
// are any more events found. In case of a retrieval or parsing error, false is
// returned and Error() can be queried for the exact failure.
func (it *SniperHookIntentExecutedIterator) Next() bool {
	// If the iterator failed, stop iterating
	if it.fail != nil {
		return false
	}
	// If the iterator completed, deliver directly whatever's available
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(SniperHookIntentExecuted)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true

		default:
			return false
		}
	}
	// Iterator still in progress, wait for either a data or an error event
	select {
	case log := <-it.logs:
		it.Event = new(SniperHookIntentExecuted)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true

	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error occurred during filtering.
func (it *SniperHookIntentExecutedIterator) Error() error {
	return it.fail
}

// Close terminates the iteration process, releasing any pending underlying
// resources.
func (it *SniperHookIntentExecutedIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// SniperHookIntentExecuted represents a IntentExecuted event raised by the SniperHook contract.
type SniperHookIntentExecuted struct {
	IntentId    *big.Int
	Beneficiary common.Address
	OraclePrice *big.Int
	AnsweredAt  *big.Int
	FastPath    bool
	Raw         types.Log // Blockchain specific contextual infos
}

// FilterIntentExecuted is a free log retrieval operation binding the contract event 0x8f1d62aa.
//
// Solidity: event IntentExecuted(uint256 indexed intentId, address indexed beneficiary, uint256 oraclePrice, uint256 answeredAt, bool fastPath)
func (_SniperHook *SniperHookFilterer) FilterIntentExecuted(opts *bind.FilterOpts, intentId []*big.Int, beneficiary []common.Address) (*SniperHookIntentExecutedIterator, error) {
	var intentIdRule []interface{}
	for _, intentIdItem := range intentId {
		intentIdRule = append(intentIdRule, intentIdItem)
	}
	var beneficiaryRule []interface{}
	for _, beneficiaryItem := range beneficiary {
		beneficiaryRule = append(beneficiaryRule, beneficiaryItem)
	}

	logs, sub, err := _SniperHook.contract.FilterLogs(opts, "IntentExecuted", intentIdRule, beneficiaryRule)
	if err != nil {
		return nil, err
	}
	return &SniperHookIntentExecutedIterator{contract: _SniperHook.contract, event: "IntentExecuted", logs: logs, sub: sub}, nil
}

// WatchIntentExecuted is a free log subscription operation binding the contract event 0x8f1d62aa.
//
// Solidity: event IntentExecuted(uint256 indexed intentId, address indexed beneficiary, uint256 oraclePrice, uint256 answeredAt, bool fastPath)
func (_SniperHook *SniperHookFilterer) WatchIntentExecuted(opts *bind.WatchOpts, sink chan<- *SniperHookIntentExecuted, intentId []*big.Int, beneficiary []common.Address) (event.Subscription, error) {
	var intentIdRule []interface{}
	for _, intentIdItem := range intentId {
		intentIdRule = append(intentIdRule, intentIdItem)
	}
	var beneficiaryRule []interface{}
	for _, beneficiaryItem := range beneficiary {
		beneficiaryRule = append(beneficiaryRule, beneficiaryItem)
	}

	logs, sub, err := _SniperHook.contract.WatchLogs(opts, "IntentExecuted", intentIdRule, beneficiaryRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				// New log arrived, parse the event and forward to the user
				event := new(SniperHookIntentExecuted)
				if err := _SniperHook.contract.UnpackLog(event, "IntentExecuted", log); err != nil {
					return err
				}
				event.Raw = log

				select {
				case sink <- event:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// ParseIntentExecuted is a log parse operation binding the contract event 0x8f1d62aa.
//
// Solidity: event IntentExecuted(uint256 indexed intentId, address indexed beneficiary, uint256 oraclePrice, uint256 answeredAt, bool fastPath)
func (_SniperHook *SniperHookFilterer) ParseIntentExecuted(log types.Log) (*SniperHookIntentExecuted, error) {
	event := new(SniperHookIntentExecuted)
	if err := _SniperHook.contract.UnpackLog(event, "IntentExecuted", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
